package repository

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/weiwei-tsao/tgchecker/pkg/model"
	"github.com/weiwei-tsao/tgchecker/pkg/util"
)

const (
	ChecksCollection  = "checks"
	NumbersCollection = "numbers"

	batchSize = 400
)

// ErrNotFound is returned when a number has never been checked.
var ErrNotFound = errors.New("no stored status for number")

// CheckRepository handles Firestore read/write for check history.
type CheckRepository struct {
	client *firestore.Client
}

func NewCheckRepository(client *firestore.Client) *CheckRepository {
	return &CheckRepository{client: client}
}

// SaveCheck stores one check record keyed by its ID.
func (r *CheckRepository) SaveCheck(ctx context.Context, rec model.CheckRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("check id is required")
	}
	ref := r.client.Collection(ChecksCollection).Doc(rec.ID)
	if _, err := ref.Set(ctx, rec); err != nil {
		return fmt.Errorf("save check %s: %w", rec.ID, err)
	}
	return nil
}

// UpsertLatest overwrites the latest-status document of every number, in batches.
func (r *CheckRepository) UpsertLatest(ctx context.Context, statuses []model.NumberStatus) error {
	for start := 0; start < len(statuses); start += batchSize {
		end := start + batchSize
		if end > len(statuses) {
			end = len(statuses)
		}
		batch := r.client.Batch()
		for _, s := range statuses[start:end] {
			ref := r.client.Collection(NumbersCollection).Doc(util.HashNumber(s.Number))
			batch.Set(ref, s)
		}
		if _, err := batch.Commit(ctx); err != nil {
			return fmt.Errorf("commit latest [%d:%d]: %w", start, end, err)
		}
	}
	return nil
}

// Latest returns the most recent stored status of n.
func (r *CheckRepository) Latest(ctx context.Context, n model.PhoneNumber) (model.NumberStatus, error) {
	snap, err := r.client.Collection(NumbersCollection).Doc(util.HashNumber(n)).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return model.NumberStatus{}, ErrNotFound
	}
	if err != nil {
		return model.NumberStatus{}, fmt.Errorf("get latest %s: %w", n, err)
	}
	var s model.NumberStatus
	if err := snap.DataTo(&s); err != nil {
		return model.NumberStatus{}, fmt.Errorf("decode latest %s: %w", n, err)
	}
	return s, nil
}

// ListRecent returns up to limit check records, newest first.
func (r *CheckRepository) ListRecent(ctx context.Context, limit int) ([]model.CheckRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	iter := r.client.Collection(ChecksCollection).
		OrderBy("requestedAt", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	var records []model.CheckRecord
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate checks: %w", err)
		}
		var rec model.CheckRecord
		if err := doc.DataTo(&rec); err != nil {
			return nil, fmt.Errorf("decode check %s: %w", doc.Ref.ID, err)
		}
		if rec.ID == "" {
			rec.ID = doc.Ref.ID
		}
		records = append(records, rec)
	}
	return records, nil
}
