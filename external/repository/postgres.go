package repository

import (
	"context"
	"time"

	"github.com/harshmriduhash/callbot/internal/calllog"
	"github.com/harshmriduhash/callbot/internal/profile"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	callDateFormat = "2006-01-02"
	callTimeFormat = "15:04:05"
)

// PostgresRepository backs both the business profile lookup and the call
// log writes with one pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) GetByOwner(ctx context.Context, ownerID string) (*profile.BusinessProfile, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT owner_id, company_name, niche, description
		 FROM business_profiles WHERE owner_id = $1`,
		ownerID)
	var p profile.BusinessProfile
	err := row.Scan(&p.OwnerID, &p.CompanyName, &p.Niche, &p.Description)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, profile.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PostgresRepository) InsertPending(ctx context.Context, input calllog.InsertPendingInput) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO call_logs (owner_id, call_date, call_time, summary)
		 VALUES ($1, $2, $3, $4)`,
		input.OwnerID,
		input.StartedAt.Format(callDateFormat),
		input.StartedAt.Format(callTimeFormat),
		calllog.PendingSummary)
	return err
}

func (r *PostgresRepository) FinalizeCall(ctx context.Context, input calllog.FinalizeCallInput) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE call_logs SET duration_seconds = $4, summary = $5, updated_at = $6
		 WHERE owner_id = $1 AND call_date = $2 AND call_time = $3`,
		input.OwnerID,
		input.StartedAt.Format(callDateFormat),
		input.StartedAt.Format(callTimeFormat),
		input.DurationSeconds,
		input.Summary,
		time.Now())
	return err
}
