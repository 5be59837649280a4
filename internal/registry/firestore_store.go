package registry

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"

	models "github.com/StanfordSpezi/spezi-firebase-sub000/internal/models/notifications"
)

const tokenField = "notificationToken"

// FirestoreStore keeps each user's devices in the sub-collection addressed by
// paths and finds duplicates with a collection-group query on collection.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
	paths      PathTemplate
}

func NewFirestoreStore(client *firestore.Client, collection string, paths PathTemplate) *FirestoreStore {
	return &FirestoreStore{client: client, collection: collection, paths: paths}
}

// RunTransaction delegates to the Firestore client, which retries fn on
// contention.
func (s *FirestoreStore) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error {
	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		return fn(ctx, &firestoreTx{store: s, tx: tx})
	})
}

func (s *FirestoreStore) UserDevices(ctx context.Context, userID string) ([]models.DeviceRecord, error) {
	snaps, err := s.client.Collection(s.paths.Collection(userID)).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	return s.decodeAll(snaps)
}

func (s *FirestoreStore) AllDevices(ctx context.Context) ([]models.DeviceRecord, error) {
	snaps, err := s.client.CollectionGroup(s.collection).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	return s.decodeAll(snaps)
}

// decodeAll drops documents outside the configured path layout; a collection
// group also matches same-named collections elsewhere in the database.
func (s *FirestoreStore) decodeAll(snaps []*firestore.DocumentSnapshot) ([]models.DeviceRecord, error) {
	records := make([]models.DeviceRecord, 0, len(snaps))
	for _, snap := range snaps {
		rec, err := decodeSnapshot(snap)
		if err != nil {
			return nil, err
		}
		if _, _, ok := s.paths.Owner(rec.Path); !ok {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *FirestoreStore) doc(path string) (*firestore.DocumentRef, error) {
	ref := s.client.Doc(path)
	if ref == nil {
		return nil, fmt.Errorf("invalid document path %q", path)
	}
	return ref, nil
}

type firestoreTx struct {
	store *FirestoreStore
	tx    *firestore.Transaction
}

func (t *firestoreTx) DevicesByToken(token string) ([]models.DeviceRecord, error) {
	q := t.store.client.CollectionGroup(t.store.collection).Where(tokenField, "==", token)
	snaps, err := t.tx.Documents(q).GetAll()
	if err != nil {
		return nil, err
	}
	return t.store.decodeAll(snaps)
}

func (t *firestoreTx) Set(path string, device models.Device) error {
	ref, err := t.store.doc(path)
	if err != nil {
		return err
	}
	return t.tx.Set(ref, device.Normalized())
}

func (t *firestoreTx) Create(userID string, device models.Device) error {
	ref := t.store.client.Collection(t.store.paths.Collection(userID)).NewDoc()
	return t.tx.Create(ref, device.Normalized())
}

func (t *firestoreTx) Delete(path string) error {
	ref, err := t.store.doc(path)
	if err != nil {
		return err
	}
	return t.tx.Delete(ref)
}

func decodeSnapshot(snap *firestore.DocumentSnapshot) (models.DeviceRecord, error) {
	var device models.Device
	if err := snap.DataTo(&device); err != nil {
		return models.DeviceRecord{}, fmt.Errorf("decode device %s: %w", snap.Ref.Path, err)
	}
	return models.DeviceRecord{
		ID:         snap.Ref.ID,
		Path:       relativePath(snap.Ref.Path),
		LastUpdate: snap.UpdateTime,
		Content:    device.Normalized(),
	}, nil
}

// relativePath strips the "projects/…/databases/…/documents/" prefix from a
// fully qualified document name.
func relativePath(name string) string {
	if _, rel, ok := strings.Cut(name, "/documents/"); ok {
		return rel
	}
	return name
}
