package registry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	models "github.com/StanfordSpezi/spezi-firebase-sub000/internal/models/notifications"
)

var errWriteBeforeRead = errors.New("transaction reads must precede writes")

// MemoryStore keeps records in process memory. Transactions are serialized and
// their writes are applied only when the unit of work returns nil.
type MemoryStore struct {
	mu      sync.Mutex
	paths   PathTemplate
	records map[string]models.DeviceRecord
	order   []string
	now     func() time.Time
	newID   func() string
}

func NewMemoryStore(paths PathTemplate) *MemoryStore {
	return &MemoryStore{
		paths:   paths,
		records: make(map[string]models.DeviceRecord),
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
}

type memoryWrite struct {
	path   string
	device *models.Device
}

type memoryTx struct {
	store  *MemoryStore
	writes []memoryWrite
}

func (s *MemoryStore) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{store: s}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	now := s.now()
	for _, w := range tx.writes {
		if w.device == nil {
			s.remove(w.path)
			continue
		}
		rec, exists := s.records[w.path]
		if !exists {
			_, id, _ := s.paths.Owner(w.path)
			rec = models.DeviceRecord{ID: id, Path: w.path}
			s.order = append(s.order, w.path)
		}
		rec.Content = *w.device
		rec.LastUpdate = now
		s.records[w.path] = rec
	}
	return nil
}

func (s *MemoryStore) remove(path string) {
	if _, ok := s.records[path]; !ok {
		return
	}
	delete(s.records, path)
	for i, p := range s.order {
		if p == path {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *MemoryStore) UserDevices(ctx context.Context, userID string) ([]models.DeviceRecord, error) {
	return s.collect(ctx, func(rec models.DeviceRecord) bool {
		return s.paths.Owns(userID, rec.Path)
	})
}

func (s *MemoryStore) AllDevices(ctx context.Context) ([]models.DeviceRecord, error) {
	return s.collect(ctx, func(models.DeviceRecord) bool { return true })
}

func (s *MemoryStore) collect(ctx context.Context, keep func(models.DeviceRecord) bool) ([]models.DeviceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.DeviceRecord{}
	for _, path := range s.order {
		if rec := s.records[path]; keep(rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (tx *memoryTx) DevicesByToken(token string) ([]models.DeviceRecord, error) {
	if len(tx.writes) > 0 {
		return nil, errWriteBeforeRead
	}
	var out []models.DeviceRecord
	for _, path := range tx.store.order {
		if rec := tx.store.records[path]; rec.Content.NotificationToken == token {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (tx *memoryTx) Set(path string, device models.Device) error {
	device = device.Normalized()
	tx.writes = append(tx.writes, memoryWrite{path: path, device: &device})
	return nil
}

func (tx *memoryTx) Create(userID string, device models.Device) error {
	return tx.Set(tx.store.paths.Document(userID, tx.store.newID()), device)
}

func (tx *memoryTx) Delete(path string) error {
	tx.writes = append(tx.writes, memoryWrite{path: path})
	return nil
}
