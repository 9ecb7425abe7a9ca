package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/pkg/model"
	"google.golang.org/api/iterator"
)

const uploadsCollection = "uploads"

// UploadRepository manages upload history records.
type UploadRepository struct {
	client *firestore.Client
}

func NewUploadRepository(client *firestore.Client) *UploadRepository {
	return &UploadRepository{client: client}
}

func (r *UploadRepository) CreateUpload(ctx context.Context, u model.Upload) error {
	if u.UploadID == "" {
		return fmt.Errorf("uploadId is required")
	}
	ref := r.client.Collection(uploadsCollection).Doc(u.UploadID)
	if _, err := ref.Set(ctx, u); err != nil {
		return fmt.Errorf("create upload %s: %w", u.UploadID, err)
	}
	return nil
}

func (r *UploadRepository) UpdateUpload(ctx context.Context, u model.Upload) error {
	if u.UploadID == "" {
		return fmt.Errorf("uploadId is required")
	}
	ref := r.client.Collection(uploadsCollection).Doc(u.UploadID)
	if _, err := ref.Set(ctx, u); err != nil {
		return fmt.Errorf("update upload %s: %w", u.UploadID, err)
	}
	return nil
}

// ListUploads returns the most recent uploads first. limit <= 0 means all.
func (r *UploadRepository) ListUploads(ctx context.Context, limit int) ([]model.Upload, error) {
	q := r.client.Collection(uploadsCollection).OrderBy("startedAt", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}
	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []model.Upload
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate uploads: %w", err)
		}
		var u model.Upload
		if err := doc.DataTo(&u); err != nil {
			return nil, fmt.Errorf("decode upload %s: %w", doc.Ref.ID, err)
		}
		if u.UploadID == "" {
			u.UploadID = doc.Ref.ID
		}
		out = append(out, u)
	}
	return out, nil
}
