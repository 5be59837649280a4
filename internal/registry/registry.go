// Package registry keeps at most one device registration per notification
// token and platform across all users.
//
// StoreDevice, RemoveDevice and RemoveInvalidToken are registry-wide
// reconciliations: they read and delete records in other users' partitions.
// Narrowing them to the calling user's partition would let a token that moved
// to a new account keep receiving the previous owner's notifications.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	models "github.com/StanfordSpezi/spezi-firebase-sub000/internal/models/notifications"
)

var ErrInvalidDevice = errors.New("invalid device")

type Registry struct {
	store  Store
	paths  PathTemplate
	logger *zap.SugaredLogger
}

// New returns a Registry over store. paths must be the template the store
// writes with.
func New(store Store, paths PathTemplate, logger *zap.SugaredLogger) *Registry {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Registry{store: store, paths: paths, logger: logger}
}

// StoreDevice registers device for userID. Afterwards exactly one record with
// the device's token and platform exists in the whole store and it belongs to
// userID. An existing record of userID is overwritten in place; records with
// the same token and platform under any other user are deleted. Records on a
// different platform are left alone.
func (r *Registry) StoreDevice(ctx context.Context, userID string, device models.Device) error {
	device = device.Normalized()
	if !r.validUserID(userID) || device.NotificationToken == "" || device.Platform == "" {
		return fmt.Errorf("store device: %w", ErrInvalidDevice)
	}

	var refreshed bool
	var removed int
	err := r.store.RunTransaction(ctx, func(ctx context.Context, tx Transaction) error {
		refreshed, removed = false, 0

		existing, err := tx.DevicesByToken(device.NotificationToken)
		if err != nil {
			return fmt.Errorf("query devices by token: %w", err)
		}
		for _, rec := range existing {
			if rec.Content.Platform != device.Platform {
				continue
			}
			if !refreshed && r.paths.Owns(userID, rec.Path) {
				if err := tx.Set(rec.Path, device); err != nil {
					return fmt.Errorf("update device %s: %w", rec.Path, err)
				}
				refreshed = true
				continue
			}
			if err := tx.Delete(rec.Path); err != nil {
				return fmt.Errorf("delete device %s: %w", rec.Path, err)
			}
			removed++
		}
		if !refreshed {
			if err := tx.Create(userID, device); err != nil {
				return fmt.Errorf("create device: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Debugw("device stored",
		"user_id", userID,
		"platform", device.Platform,
		"refreshed", refreshed,
		"removed_duplicates", removed,
	)
	return nil
}

// RemoveDevice deletes every record with the given token and platform,
// whichever user owns it. userID is not used to narrow the search: an explicit
// unregister is authoritative for the token. Removing a device that is not
// registered is a no-op.
func (r *Registry) RemoveDevice(ctx context.Context, userID, token string, platform models.Platform) error {
	platform = models.ParsePlatform(string(platform))
	if token == "" || platform == "" {
		return fmt.Errorf("remove device: %w", ErrInvalidDevice)
	}

	removed, err := r.deleteByToken(ctx, token, func(rec models.DeviceRecord) bool {
		return rec.Content.Platform == platform
	})
	if err != nil {
		return err
	}
	r.logger.Debugw("device removed", "user_id", userID, "platform", platform, "removed", removed)
	return nil
}

// RemoveInvalidToken deletes every record carrying token, for any user and
// any platform. It is called when the push service reports the token as no
// longer registered. Only records laid out by the registry's PathTemplate are
// seen: with Firestore, documents with the token in a same-named collection
// outside the template are left untouched.
func (r *Registry) RemoveInvalidToken(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("remove invalid token: %w", ErrInvalidDevice)
	}
	removed, err := r.deleteByToken(ctx, token, func(models.DeviceRecord) bool { return true })
	if err != nil {
		return err
	}
	r.logger.Infow("invalid token removed", "removed", removed)
	return nil
}

func (r *Registry) deleteByToken(ctx context.Context, token string, match func(models.DeviceRecord) bool) (int, error) {
	var removed int
	err := r.store.RunTransaction(ctx, func(ctx context.Context, tx Transaction) error {
		removed = 0
		existing, err := tx.DevicesByToken(token)
		if err != nil {
			return fmt.Errorf("query devices by token: %w", err)
		}
		for _, rec := range existing {
			if !match(rec) {
				continue
			}
			if err := tx.Delete(rec.Path); err != nil {
				return fmt.Errorf("delete device %s: %w", rec.Path, err)
			}
			removed++
		}
		return nil
	})
	return removed, err
}

// GetUserDevices returns the records in userID's partition, in store order.
func (r *Registry) GetUserDevices(ctx context.Context, userID string) ([]models.DeviceRecord, error) {
	if !r.validUserID(userID) {
		return nil, fmt.Errorf("get devices of user %q: %w", userID, ErrInvalidDevice)
	}
	records, err := r.store.UserDevices(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get devices of user %s: %w", userID, err)
	}
	return records, nil
}

// UsersWithDevices returns the sorted ids of all users owning at least one
// record.
func (r *Registry) UsersWithDevices(ctx context.Context) ([]string, error) {
	records, err := r.store.AllDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all devices: %w", err)
	}
	seen := make(map[string]struct{})
	var users []string
	for _, rec := range records {
		userID, _, ok := r.paths.Owner(rec.Path)
		if !ok {
			continue
		}
		if _, dup := seen[userID]; dup {
			continue
		}
		seen[userID] = struct{}{}
		users = append(users, userID)
	}
	sort.Strings(users)
	return users, nil
}

// validUserID reports whether userID survives a round trip through the path
// template. Ids containing "/" would be written to a path that Owner cannot
// attribute back to them.
func (r *Registry) validUserID(userID string) bool {
	return userID != "" && r.paths.Owns(userID, r.paths.Document(userID, "x"))
}
