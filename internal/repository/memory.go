package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/weiwei-tsao/gerencial-qoe/apps/api/internal/business/dataset"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/pkg/model"
)

// MemoryDatasetStore keeps the active snapshot in process memory.
type MemoryDatasetStore struct {
	mu     sync.RWMutex
	active *dataset.Snapshot
}

func NewMemoryDatasetStore() *MemoryDatasetStore {
	return &MemoryDatasetStore{}
}

func (s *MemoryDatasetStore) SaveActive(_ context.Context, snap dataset.Snapshot) error {
	records := make([]model.ActionRecord, len(snap.Table.Records))
	copy(records, snap.Table.Records)
	snap.Table = snap.Table.WithRecords(records)

	s.mu.Lock()
	s.active = &snap
	s.mu.Unlock()
	return nil
}

func (s *MemoryDatasetStore) LoadActive(context.Context) (dataset.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == nil {
		return dataset.Snapshot{}, dataset.ErrNoDataset
	}
	return *s.active, nil
}

var (
	_ dataset.Store     = (*MemoryDatasetStore)(nil)
	_ dataset.UploadLog = (*MemoryUploadLog)(nil)
)

// MemoryUploadLog keeps upload history in process memory.
type MemoryUploadLog struct {
	mu      sync.Mutex
	uploads map[string]model.Upload
	seq     map[string]int
	next    int
}

func NewMemoryUploadLog() *MemoryUploadLog {
	return &MemoryUploadLog{
		uploads: make(map[string]model.Upload),
		seq:     make(map[string]int),
	}
}

func (l *MemoryUploadLog) CreateUpload(_ context.Context, u model.Upload) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.uploads[u.UploadID] = u
	if _, ok := l.seq[u.UploadID]; !ok {
		l.seq[u.UploadID] = l.next
		l.next++
	}
	return nil
}

func (l *MemoryUploadLog) UpdateUpload(ctx context.Context, u model.Upload) error {
	return l.CreateUpload(ctx, u)
}

// ListUploads returns uploads newest first; ties keep reverse insertion order.
func (l *MemoryUploadLog) ListUploads(_ context.Context, limit int) ([]model.Upload, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]model.Upload, 0, len(l.uploads))
	for _, u := range l.uploads {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.After(out[j].StartedAt)
		}
		return l.seq[out[i].UploadID] > l.seq[out[j].UploadID]
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
