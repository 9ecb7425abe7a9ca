package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/internal/platform/logging"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/internal/platform/telemetry"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/pkg/model"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/pkg/util"
)

var (
	// ErrNoDataset is returned when no table has been loaded yet.
	ErrNoDataset = errors.New("no dataset loaded")
	// ErrPersist wraps failures to save a parsed table.
	ErrPersist = errors.New("save dataset")
)

// Snapshot is an immutable active table together with its provenance.
// Computations receive a Snapshot and never see later uploads.
type Snapshot struct {
	model.Dataset
	Table model.Table
}

// Store persists the active snapshot so it survives restarts.
type Store interface {
	SaveActive(ctx context.Context, snap Snapshot) error
	// LoadActive returns ErrNoDataset when nothing was saved.
	LoadActive(ctx context.Context) (Snapshot, error)
}

// UploadLog records every attempt to replace the active table.
type UploadLog interface {
	CreateUpload(ctx context.Context, u model.Upload) error
	UpdateUpload(ctx context.Context, u model.Upload) error
	ListUploads(ctx context.Context, limit int) ([]model.Upload, error)
}

// Opener resolves a configured source into a readable spreadsheet.
type Opener interface {
	Open(ctx context.Context, source string) (io.ReadCloser, error)
}

// ParseFunc turns a spreadsheet into a table. filename selects the format.
type ParseFunc func(r io.Reader, filename string) (model.Table, error)

// Service owns the active snapshot. Writers replace it wholesale; readers get
// the snapshot that was current when they asked.
type Service struct {
	store   Store
	uploads UploadLog
	opener  Opener
	parse   ParseFunc
	source  string

	mu      sync.RWMutex
	current *Snapshot

	// writeMu serializes uploads and reloads so the last finished write wins.
	writeMu sync.Mutex

	now   func() time.Time
	newID func() string
}

func NewService(store Store, uploads UploadLog, opener Opener, parse ParseFunc, source string) *Service {
	return &Service{
		store:   store,
		uploads: uploads,
		opener:  opener,
		parse:   parse,
		source:  source,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
}

// Source is the configured reload source.
func (s *Service) Source() string { return s.source }

// Current returns the active snapshot or ErrNoDataset.
func (s *Service) Current() (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Snapshot{}, ErrNoDataset
	}
	return *s.current, nil
}

// Upload parses an uploaded spreadsheet and makes it the active table.
// A missing required column yields a *model.SchemaError and leaves the active
// table untouched.
func (s *Service) Upload(ctx context.Context, filename string, r io.Reader) (Snapshot, error) {
	return s.ingest(ctx, model.KindUpload, filename, r)
}

// Reload reads the configured source again and makes it the active table.
func (s *Service) Reload(ctx context.Context) (Snapshot, error) {
	if s.source == "" {
		return Snapshot{}, errors.New("no dataset source configured")
	}
	if s.opener == nil {
		return Snapshot{}, errors.New("no dataset opener configured")
	}
	rc, err := s.opener.Open(ctx, s.source)
	if err != nil {
		s.logFailedOpen(ctx, err)
		return Snapshot{}, fmt.Errorf("open %s: %w", s.source, err)
	}
	defer rc.Close()
	return s.ingest(ctx, model.KindReload, s.source, rc)
}

// Restore loads the last saved snapshot from the store. It returns
// ErrNoDataset when the store is empty.
func (s *Service) Restore(ctx context.Context) (Snapshot, error) {
	snap, err := s.store.LoadActive(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	s.swap(snap)
	logging.Ctx(ctx).Info().
		Str("dataset_id", snap.ID).
		Int("rows", snap.RowCount).
		Msg("restored active dataset")
	return snap, nil
}

// History lists upload attempts, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]model.Upload, error) {
	uploads, err := s.uploads.ListUploads(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	return uploads, nil
}

func (s *Service) ingest(ctx context.Context, kind, source string, r io.Reader) (Snapshot, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	log := logging.Ctx(ctx)
	upload := model.Upload{
		UploadID:  s.newID(),
		Kind:      kind,
		Source:    source,
		Status:    model.UploadRunning,
		StartedAt: s.now(),
	}
	if err := s.uploads.CreateUpload(ctx, upload); err != nil {
		return Snapshot{}, fmt.Errorf("create upload: %w", err)
	}

	snap, err := s.build(ctx, source, r)
	upload.FinishedAt = s.now()
	if err != nil {
		var schemaErr *model.SchemaError
		if errors.As(err, &schemaErr) {
			upload.Status = model.UploadRejected
			upload.MissingColumns = schemaErr.Missing
		} else {
			upload.Status = model.UploadFailed
		}
		upload.Error = err.Error()
		s.finish(ctx, kind, upload)
		log.Warn().Err(err).Str("upload_id", upload.UploadID).Str("source", source).Msg("dataset not replaced")
		return Snapshot{}, err
	}

	s.swap(snap)
	upload.Status = model.UploadSuccess
	upload.DatasetID = snap.ID
	upload.Rows = snap.RowCount
	s.finish(ctx, kind, upload)
	log.Info().
		Str("upload_id", upload.UploadID).
		Str("dataset_id", snap.ID).
		Str("source", source).
		Int("rows", snap.RowCount).
		Msg("active dataset replaced")
	return snap, nil
}

func (s *Service) build(ctx context.Context, source string, r io.Reader) (Snapshot, error) {
	table, err := s.parse(r, source)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{
		Dataset: model.Dataset{
			ID:       s.newID(),
			Source:   source,
			LoadedAt: s.now(),
			Checksum: util.HashTable(table),
			Columns:  table.Columns,
			RowCount: table.Len(),
		},
		Table: table,
	}
	if err := s.store.SaveActive(ctx, snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return snap, nil
}

func (s *Service) swap(snap Snapshot) {
	s.mu.Lock()
	s.current = &snap
	s.mu.Unlock()
	telemetry.RecordDatasetRows(snap.RowCount)
}

func (s *Service) finish(ctx context.Context, kind string, upload model.Upload) {
	telemetry.RecordUpload(kind, upload.Status)
	if err := s.uploads.UpdateUpload(ctx, upload); err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("upload_id", upload.UploadID).Msg("update upload")
	}
}

func (s *Service) logFailedOpen(ctx context.Context, err error) {
	now := s.now()
	upload := model.Upload{
		UploadID:   s.newID(),
		Kind:       model.KindReload,
		Source:     s.source,
		Status:     model.UploadFailed,
		Error:      err.Error(),
		StartedAt:  now,
		FinishedAt: now,
	}
	telemetry.RecordUpload(model.KindReload, upload.Status)
	if cerr := s.uploads.CreateUpload(ctx, upload); cerr != nil {
		logging.Ctx(ctx).Error().Err(cerr).Msg("record failed reload")
	}
	logging.Ctx(ctx).Warn().Err(err).Str("source", s.source).Msg("reload source unavailable")
}
