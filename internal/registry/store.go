package registry

import (
	"context"

	models "github.com/StanfordSpezi/spezi-firebase-sub000/internal/models/notifications"
)

// Store is the document store backing the registry. Every mutating registry
// operation runs as exactly one RunTransaction call; retrying on conflict is
// the store's business.
type Store interface {
	RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
	// UserDevices reads the partition of userID only.
	UserDevices(ctx context.Context, userID string) ([]models.DeviceRecord, error)
	// AllDevices reads every record of every user.
	AllDevices(ctx context.Context) ([]models.DeviceRecord, error)
}

// Transaction is the view of the store inside one unit of work. All reads
// must happen before the first write.
type Transaction interface {
	// DevicesByToken returns every record with the given token, across all users
	// and platforms.
	DevicesByToken(token string) ([]models.DeviceRecord, error)
	// Set overwrites the record at path, keeping its id.
	Set(path string, device models.Device) error
	// Create adds a record with a fresh id to userID's partition.
	Create(userID string, device models.Device) error
	Delete(path string) error
}
