package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gradetrack-api/internal/models"
)

// GradebookRepository persists one serialized gradebook document per owner.
type GradebookRepository struct {
	db *sqlx.DB
}

// NewGradebookRepository constructs the repository.
func NewGradebookRepository(db *sqlx.DB) *GradebookRepository {
	return &GradebookRepository{db: db}
}

// Fetch loads the owner's gradebook. A missing row returns (nil, nil) so
// callers can distinguish "no document yet" from a transport failure.
func (r *GradebookRepository) Fetch(ctx context.Context, ownerID string) (models.Collection, error) {
	const query = `SELECT payload FROM gradebooks WHERE owner_id = $1`
	var payload []byte
	if err := r.db.GetContext(ctx, &payload, query, ownerID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch gradebook %s: %w", ownerID, err)
	}
	if len(payload) == 0 {
		return nil, nil
	}
	var collection models.Collection
	if err := json.Unmarshal(payload, &collection); err != nil {
		return nil, fmt.Errorf("decode gradebook %s: %w", ownerID, err)
	}
	return collection, nil
}

// Save upserts the serialized collection for the owner.
func (r *GradebookRepository) Save(ctx context.Context, ownerID string, collection models.Collection) error {
	payload, err := json.Marshal(collection)
	if err != nil {
		return fmt.Errorf("encode gradebook %s: %w", ownerID, err)
	}
	const query = `INSERT INTO gradebooks (owner_id, payload, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (owner_id)
DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, ownerID, payload, time.Now().UTC()); err != nil {
		return fmt.Errorf("save gradebook %s: %w", ownerID, err)
	}
	return nil
}

// Delete removes the owner's document. Deleting a missing row is fine.
func (r *GradebookRepository) Delete(ctx context.Context, ownerID string) error {
	const query = `DELETE FROM gradebooks WHERE owner_id = $1`
	if _, err := r.db.ExecContext(ctx, query, ownerID); err != nil {
		return fmt.Errorf("delete gradebook %s: %w", ownerID, err)
	}
	return nil
}
