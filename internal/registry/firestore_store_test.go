package registry

import (
	"context"
	"fmt"
	"os"
	"testing"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "github.com/StanfordSpezi/spezi-firebase-sub000/internal/models/notifications"
)

func TestRelativePath(t *testing.T) {
	assert.Equal(t, "users/u1/devices/d1",
		relativePath("projects/demo/databases/(default)/documents/users/u1/devices/d1"))
	assert.Equal(t, "users/u1/devices/d1", relativePath("users/u1/devices/d1"))
}

// emulatorClient connects to the Firestore emulator named by
// FIRESTORE_EMULATOR_HOST and skips the test when it is not set.
func emulatorClient(t *testing.T) *firestore.Client {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	projectID := os.Getenv("FIRESTORE_PROJECT_ID")
	if projectID == "" {
		projectID = "demo-devices"
	}
	client, err := firestore.NewClient(context.Background(), projectID)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

// isolatedTemplate gives every test its own root collection. The collection
// group still spans all of them, so reads also exercise the template filter.
func isolatedTemplate() PathTemplate {
	return PathTemplate(fmt.Sprintf("suite-%s/{userId}/%s", uuid.New().String()[:8], DefaultCollectionName))
}

func TestFirestoreStore_Suite(t *testing.T) {
	client := emulatorClient(t)
	runStoreSuite(t, func(*testing.T) (Store, PathTemplate) {
		paths := isolatedTemplate()
		return NewFirestoreStore(client, DefaultCollectionName, paths), paths
	})
}

func TestFirestoreStore_IgnoresDocumentsOutsideTemplate(t *testing.T) {
	client := emulatorClient(t)
	ctx := context.Background()
	paths := isolatedTemplate()
	store := NewFirestoreStore(client, DefaultCollectionName, paths)
	reg := New(store, paths, nil)

	stray := client.Doc(fmt.Sprintf("misc-%s/box/%s/d1", uuid.New().String()[:8], DefaultCollectionName))
	_, err := stray.Set(ctx, models.Device{NotificationToken: "shared", Platform: models.PlatformIOS})
	require.NoError(t, err)

	require.NoError(t, reg.StoreDevice(ctx, "alice", device("shared", models.PlatformIOS)))
	recs := allWithToken(t, store, "shared")
	require.Len(t, recs, 1)
	assert.True(t, paths.Owns("alice", recs[0].Path))

	require.NoError(t, reg.RemoveInvalidToken(ctx, "shared"))
	assert.Empty(t, allWithToken(t, store, "shared"))

	snap, err := stray.Get(ctx)
	require.NoError(t, err)
	assert.True(t, snap.Exists(), "documents outside the template are not touched")
}

func TestFirestoreStore_CreateAddsAndSetReplaces(t *testing.T) {
	client := emulatorClient(t)
	ctx := context.Background()
	paths := isolatedTemplate()
	store := NewFirestoreStore(client, DefaultCollectionName, paths)

	require.NoError(t, store.RunTransaction(ctx, func(_ context.Context, tx Transaction) error {
		return tx.Create("alice", models.Device{NotificationToken: "tok", Platform: "ios", AppBuild: "7"})
	}))
	recs, err := store.UserDevices(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, models.PlatformIOS, recs[0].Content.Platform)

	require.NoError(t, store.RunTransaction(ctx, func(_ context.Context, tx Transaction) error {
		if _, err := tx.DevicesByToken("tok"); err != nil {
			return err
		}
		return tx.Set(recs[0].Path, models.Device{NotificationToken: "tok", Platform: models.PlatformIOS, Language: "en"})
	}))

	snap, err := client.Doc(recs[0].Path).Get(ctx)
	require.NoError(t, err)
	data := snap.Data()
	assert.Equal(t, "iOS", data["platform"])
	assert.Equal(t, "en", data["language"])
	assert.NotContains(t, data, "appBuild")
}
