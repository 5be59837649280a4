package registry

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "github.com/StanfordSpezi/spezi-firebase-sub000/internal/models/notifications"
)

// --- helpers ---

func newTestRegistry() (*Registry, *MemoryStore) {
	store := NewMemoryStore(DefaultPathTemplate)
	return New(store, DefaultPathTemplate, nil), store
}

func device(token string, platform models.Platform) models.Device {
	return models.Device{NotificationToken: token, Platform: platform}
}

func allWithToken(t *testing.T, store Store, token string) []models.DeviceRecord {
	t.Helper()
	all, err := store.AllDevices(context.Background())
	require.NoError(t, err)
	var out []models.DeviceRecord
	for _, rec := range all {
		if rec.Content.NotificationToken == token {
			out = append(out, rec)
		}
	}
	return out
}

// seed writes records directly, bypassing the registry's reconciliation, to
// reproduce inconsistent states.
func seed(t *testing.T, store Store, userID string, d models.Device) {
	t.Helper()
	require.NoError(t, store.RunTransaction(context.Background(), func(_ context.Context, tx Transaction) error {
		return tx.Create(userID, d)
	}))
}

// --- tests ---

func TestStoreDevice_RejectsIncompleteDevice(t *testing.T) {
	reg, _ := newTestRegistry()
	ctx := context.Background()

	assert.ErrorIs(t, reg.StoreDevice(ctx, "alice", device("", models.PlatformIOS)), ErrInvalidDevice)
	assert.ErrorIs(t, reg.StoreDevice(ctx, "alice", device("tok", "")), ErrInvalidDevice)
	assert.ErrorIs(t, reg.StoreDevice(ctx, "", device("tok", models.PlatformIOS)), ErrInvalidDevice)
}

func TestStoreDevice_UserIDWithSlashIsNotWritten(t *testing.T) {
	reg, store := newTestRegistry()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		assert.ErrorIs(t, reg.StoreDevice(ctx, "org/alice", device("tok", models.PlatformIOS)), ErrInvalidDevice)
	}
	all, err := store.AllDevices(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	users, err := reg.UsersWithDevices(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	custom := PathTemplate("tenants/{userId}/push")
	assert.True(t, New(store, custom, nil).validUserID("alice"))
	assert.False(t, New(store, custom, nil).validUserID("a/b"))
}

func TestRemoveDevice_RejectsMissingArguments(t *testing.T) {
	reg, _ := newTestRegistry()
	assert.ErrorIs(t, reg.RemoveDevice(context.Background(), "alice", "", models.PlatformIOS), ErrInvalidDevice)
	assert.ErrorIs(t, reg.RemoveDevice(context.Background(), "alice", "tok", " "), ErrInvalidDevice)
}

func TestRemoveInvalidToken_RejectsEmptyToken(t *testing.T) {
	reg, _ := newTestRegistry()
	assert.ErrorIs(t, reg.RemoveInvalidToken(context.Background(), ""), ErrInvalidDevice)
}

type failingStore struct {
	Store
	err error
}

func (s failingStore) RunTransaction(context.Context, func(context.Context, Transaction) error) error {
	return s.err
}

func (s failingStore) UserDevices(context.Context, string) ([]models.DeviceRecord, error) {
	return nil, s.err
}

func TestRegistry_PropagatesStoreErrors(t *testing.T) {
	conflict := errors.New("aborted: transaction contention")
	reg := New(failingStore{err: conflict}, DefaultPathTemplate, nil)
	ctx := context.Background()

	assert.ErrorIs(t, reg.StoreDevice(ctx, "alice", device("tok", models.PlatformIOS)), conflict)
	assert.ErrorIs(t, reg.RemoveDevice(ctx, "alice", "tok", models.PlatformIOS), conflict)
	assert.ErrorIs(t, reg.RemoveInvalidToken(ctx, "tok"), conflict)
	_, err := reg.GetUserDevices(ctx, "alice")
	assert.ErrorIs(t, err, conflict)
}

func TestMemoryStore_FailedUnitOfWorkLeavesNoTrace(t *testing.T) {
	store := NewMemoryStore(DefaultPathTemplate)
	ctx := context.Background()
	seed(t, store, "alice", device("tok", models.PlatformIOS))
	before, err := store.AllDevices(ctx)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = store.RunTransaction(ctx, func(_ context.Context, tx Transaction) error {
		recs, err := tx.DevicesByToken("tok")
		if err != nil {
			return err
		}
		for _, rec := range recs {
			if err := tx.Delete(rec.Path); err != nil {
				return err
			}
		}
		if err := tx.Create("bob", device("tok", models.PlatformIOS)); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	after, err := store.AllDevices(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestMemoryStore_ReadAfterWriteIsRejected(t *testing.T) {
	store := NewMemoryStore(DefaultPathTemplate)
	err := store.RunTransaction(context.Background(), func(_ context.Context, tx Transaction) error {
		if err := tx.Create("alice", device("tok", models.PlatformIOS)); err != nil {
			return err
		}
		_, err := tx.DevicesByToken("tok")
		return err
	})
	assert.ErrorIs(t, err, errWriteBeforeRead)
}

func TestMemoryStore_ConcurrentRegistrationsKeepOneOwner(t *testing.T) {
	reg, store := newTestRegistry()
	ctx := context.Background()

	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		go func(i int) {
			errs <- reg.StoreDevice(ctx, fmt.Sprintf("user-%d", i%5), device("race", models.PlatformAndroid))
		}(i)
	}
	for i := 0; i < 20; i++ {
		require.NoError(t, <-errs)
	}
	assert.Len(t, allWithToken(t, store, "race"), 1)
}
