package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/internal/business/dataset"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/internal/platform/logging"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/pkg/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	datasetsCollection = "datasets"
	recordsCollection  = "records"
	systemCollection   = "system"
	activeDoc          = "active"
	batchSize          = 400
)

// DatasetRepository keeps the active action table in Firestore. Each dataset
// is a document under datasets/ with its rows in a records subcollection;
// system/active points at the current one.
type DatasetRepository struct {
	client *firestore.Client
}

func NewDatasetRepository(client *firestore.Client) *DatasetRepository {
	return &DatasetRepository{client: client}
}

var _ dataset.Store = (*DatasetRepository)(nil)

type activePointer struct {
	DatasetID string    `firestore:"datasetId"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

// recordDoc is the stored form of one action row.
type recordDoc struct {
	Index         int       `firestore:"index"`
	NodeID        string    `firestore:"nodeId,omitempty"`
	ScoreBefore   string    `firestore:"scoreBefore,omitempty"`
	ScoreAfter    string    `firestore:"scoreAfter,omitempty"`
	Sector        string    `firestore:"sector,omitempty"`
	City          string    `firestore:"city,omitempty"`
	Reason        string    `firestore:"reason,omitempty"`
	Responsible   string    `firestore:"responsible,omitempty"`
	ExecutionDate time.Time `firestore:"executionDate,omitempty"`
	Month         string    `firestore:"month,omitempty"`
}

func toRecordDoc(i int, r model.ActionRecord) recordDoc {
	return recordDoc{
		Index:         i,
		NodeID:        r.NodeID,
		ScoreBefore:   r.ScoreBefore,
		ScoreAfter:    r.ScoreAfter,
		Sector:        r.Sector,
		City:          r.City,
		Reason:        r.Reason,
		Responsible:   r.Responsible,
		ExecutionDate: r.ExecutionDate,
		Month:         r.Month,
	}
}

func (d recordDoc) record() model.ActionRecord {
	return model.ActionRecord{
		NodeID:        d.NodeID,
		ScoreBefore:   d.ScoreBefore,
		ScoreAfter:    d.ScoreAfter,
		Sector:        d.Sector,
		City:          d.City,
		Reason:        d.Reason,
		Responsible:   d.Responsible,
		ExecutionDate: d.ExecutionDate,
		Month:         d.Month,
	}
}

func recordDocID(i int) string {
	return fmt.Sprintf("%06d", i)
}

// datasetWriter is the sequence of writes SaveActive performs.
type datasetWriter interface {
	activeID(ctx context.Context) (string, error)
	writeRecords(ctx context.Context, id string, records []model.ActionRecord) error
	writeDataset(ctx context.Context, ds model.Dataset) error
	setActive(ctx context.Context, id string) error
	purge(ctx context.Context, id string) error
}

// SaveActive writes the snapshot, repoints system/active at it and removes
// the rows of the dataset it replaced.
func (r *DatasetRepository) SaveActive(ctx context.Context, snap dataset.Snapshot) error {
	return saveActive(ctx, r, snap)
}

// saveActive fails only while system/active still names the previous
// dataset. A partial write is discarded; once the pointer has moved, a failed
// purge of the replaced dataset is logged and left for a later cleanup.
func saveActive(ctx context.Context, w datasetWriter, snap dataset.Snapshot) error {
	if snap.ID == "" {
		return fmt.Errorf("dataset id is required")
	}
	previous, err := w.activeID(ctx)
	if err != nil {
		return err
	}

	if err := w.writeRecords(ctx, snap.ID, snap.Table.Records); err != nil {
		discard(ctx, w, snap.ID)
		return err
	}
	if err := w.writeDataset(ctx, snap.Dataset); err != nil {
		discard(ctx, w, snap.ID)
		return fmt.Errorf("save dataset %s: %w", snap.ID, err)
	}
	if err := w.setActive(ctx, snap.ID); err != nil {
		discard(ctx, w, snap.ID)
		return fmt.Errorf("set active dataset: %w", err)
	}

	if previous != "" && previous != snap.ID {
		if err := w.purge(ctx, previous); err != nil {
			logging.Ctx(ctx).Warn().Err(err).
				Str("dataset_id", previous).
				Str("active_dataset_id", snap.ID).
				Msg("purge replaced dataset")
		}
	}
	return nil
}

func discard(ctx context.Context, w datasetWriter, id string) {
	if err := w.purge(ctx, id); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("dataset_id", id).Msg("discard partial dataset")
	}
}

func (r *DatasetRepository) writeRecords(ctx context.Context, id string, records []model.ActionRecord) error {
	dsRef := r.client.Collection(datasetsCollection).Doc(id)
	for start := 0; start < len(records); start += batchSize {
		end := min(start+batchSize, len(records))
		batch := r.client.Batch()
		for i := start; i < end; i++ {
			batch.Set(dsRef.Collection(recordsCollection).Doc(recordDocID(i)), toRecordDoc(i, records[i]))
		}
		if _, err := batch.Commit(ctx); err != nil {
			return fmt.Errorf("commit records [%d:%d]: %w", start, end, err)
		}
	}
	return nil
}

func (r *DatasetRepository) writeDataset(ctx context.Context, ds model.Dataset) error {
	_, err := r.client.Collection(datasetsCollection).Doc(ds.ID).Set(ctx, ds)
	return err
}

func (r *DatasetRepository) setActive(ctx context.Context, id string) error {
	pointer := activePointer{DatasetID: id, UpdatedAt: time.Now().UTC()}
	_, err := r.client.Collection(systemCollection).Doc(activeDoc).Set(ctx, pointer)
	return err
}

// LoadActive reads the dataset system/active points at.
func (r *DatasetRepository) LoadActive(ctx context.Context) (dataset.Snapshot, error) {
	id, err := r.activeID(ctx)
	if err != nil {
		return dataset.Snapshot{}, err
	}
	if id == "" {
		return dataset.Snapshot{}, dataset.ErrNoDataset
	}

	dsRef := r.client.Collection(datasetsCollection).Doc(id)
	doc, err := dsRef.Get(ctx)
	if status.Code(err) == codes.NotFound {
		return dataset.Snapshot{}, dataset.ErrNoDataset
	}
	if err != nil {
		return dataset.Snapshot{}, fmt.Errorf("get dataset %s: %w", id, err)
	}
	var ds model.Dataset
	if err := doc.DataTo(&ds); err != nil {
		return dataset.Snapshot{}, fmt.Errorf("decode dataset %s: %w", id, err)
	}
	if ds.ID == "" {
		ds.ID = doc.Ref.ID
	}

	iter := dsRef.Collection(recordsCollection).OrderBy("index", firestore.Asc).Documents(ctx)
	defer iter.Stop()
	records := make([]model.ActionRecord, 0, ds.RowCount)
	for {
		rdoc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return dataset.Snapshot{}, fmt.Errorf("iterate records: %w", err)
		}
		var rd recordDoc
		if err := rdoc.DataTo(&rd); err != nil {
			return dataset.Snapshot{}, fmt.Errorf("decode record %s: %w", rdoc.Ref.ID, err)
		}
		records = append(records, rd.record())
	}

	return dataset.Snapshot{
		Dataset: ds,
		Table:   model.Table{Columns: ds.Columns, Records: records},
	}, nil
}

func (r *DatasetRepository) activeID(ctx context.Context) (string, error) {
	doc, err := r.client.Collection(systemCollection).Doc(activeDoc).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get active dataset: %w", err)
	}
	var p activePointer
	if err := doc.DataTo(&p); err != nil {
		return "", fmt.Errorf("decode active dataset: %w", err)
	}
	return p.DatasetID, nil
}

func (r *DatasetRepository) purge(ctx context.Context, id string) error {
	dsRef := r.client.Collection(datasetsCollection).Doc(id)
	iter := dsRef.Collection(recordsCollection).Documents(ctx)
	defer iter.Stop()

	batch := r.client.Batch()
	pending := 0
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("iterate records: %w", err)
		}
		batch.Delete(doc.Ref)
		pending++
		if pending == batchSize {
			if _, err := batch.Commit(ctx); err != nil {
				return fmt.Errorf("commit delete batch: %w", err)
			}
			batch = r.client.Batch()
			pending = 0
		}
	}
	if pending > 0 {
		if _, err := batch.Commit(ctx); err != nil {
			return fmt.Errorf("commit delete batch: %w", err)
		}
	}
	if _, err := dsRef.Delete(ctx); err != nil {
		return fmt.Errorf("delete dataset doc: %w", err)
	}
	return nil
}
