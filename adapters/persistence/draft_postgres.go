package persistence

import (
	"context"
	"encoding/json"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/worklinkgh/tasker-onboarding/internal/domain/onboarding"
	"github.com/worklinkgh/tasker-onboarding/pkg/apperror"
)

var psqlDraft = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// postgresDraftStore keeps drafts in one row per worker:
//
//	onboarding_drafts(worker_id uuid primary key, draft jsonb,
//	                  step int, updated_at timestamptz)
//
// draft and step map to the two independent entries of the KV layout; each
// write touches only its own column so the split survives.
type postgresDraftStore struct {
	db *pgxpool.Pool
}

func NewPostgresDraftStore(db *pgxpool.Pool) onboarding.DraftStore {
	return &postgresDraftStore{db: db}
}

func (s *postgresDraftStore) SaveData(ctx context.Context, workerID uuid.UUID, r onboarding.Record) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return apperror.NewInternal("failed to marshal onboarding draft", err)
	}

	query, args, err := psqlDraft.
		Insert("onboarding_drafts").
		Columns("worker_id", "draft", "step", "updated_at").
		Values(workerID, payload, onboarding.StepBasicInfo, sq.Expr("NOW()")).
		Suffix("ON CONFLICT (worker_id) DO UPDATE SET draft = EXCLUDED.draft, updated_at = NOW()").
		ToSql()
	if err != nil {
		return apperror.NewInternal("failed to build draft upsert", err)
	}

	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return apperror.NewInternal("failed to write onboarding draft payload", err)
	}
	return nil
}

func (s *postgresDraftStore) SaveStep(ctx context.Context, workerID uuid.UUID, step int) error {
	query, args, err := psqlDraft.
		Insert("onboarding_drafts").
		Columns("worker_id", "draft", "step", "updated_at").
		Values(workerID, []byte("{}"), step, sq.Expr("NOW()")).
		Suffix("ON CONFLICT (worker_id) DO UPDATE SET step = EXCLUDED.step, updated_at = NOW()").
		ToSql()
	if err != nil {
		return apperror.NewInternal("failed to build draft step upsert", err)
	}

	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return apperror.NewInternal("failed to write onboarding draft step", err)
	}
	return nil
}

func (s *postgresDraftStore) Load(ctx context.Context, workerID uuid.UUID) (onboarding.Record, error) {
	query, args, err := psqlDraft.
		Select("draft", "step").
		From("onboarding_drafts").
		Where(sq.Eq{"worker_id": workerID}).
		ToSql()
	if err != nil {
		return onboarding.Record{}, apperror.NewInternal("failed to build draft select", err)
	}

	var payload []byte
	var step int
	if err := s.db.QueryRow(ctx, query, args...).Scan(&payload, &step); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return onboarding.Record{}, onboarding.ErrDraftNotFound
		}
		return onboarding.Record{}, apperror.NewInternal("failed to read onboarding draft", err)
	}

	r := onboarding.NewRecord()
	if err := json.Unmarshal(payload, &r); err != nil {
		return onboarding.Record{}, apperror.NewInternal("failed to unmarshal onboarding draft", err)
	}
	if step >= 1 && step <= onboarding.TotalSteps {
		r.CurrentStep = step
	}
	return r, nil
}

func (s *postgresDraftStore) Clear(ctx context.Context, workerID uuid.UUID) error {
	query, args, err := psqlDraft.
		Delete("onboarding_drafts").
		Where(sq.Eq{"worker_id": workerID}).
		ToSql()
	if err != nil {
		return apperror.NewInternal("failed to build draft delete", err)
	}

	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return apperror.NewInternal("failed to clear onboarding draft", err)
	}
	return nil
}
