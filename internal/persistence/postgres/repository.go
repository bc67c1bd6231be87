// Package postgres provides pgx-backed persistence for journaling records.
package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/journal/internal/domain"
	"example.com/journal/internal/observability"
)

// Repository implements domain.Repository over a pgx connection pool. One
// generic store serves all six record kinds; only the kind descriptors differ.
type Repository struct {
	pool     *pgxpool.Pool
	workouts *store[domain.Workout, *domain.Workout]
	meals    *store[domain.Meal, *domain.Meal]
	sleep    *store[domain.SleepEntry, *domain.SleepEntry]
	focus    *store[domain.FocusSession, *domain.FocusSession]
	reading  *store[domain.ReadingEntry, *domain.ReadingEntry]
	reviews  *store[domain.ReviewEntry, *domain.ReviewEntry]
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{
		pool:     pool,
		workouts: newStore[domain.Workout, *domain.Workout](pool, workoutSpec()),
		meals:    newStore[domain.Meal, *domain.Meal](pool, mealSpec()),
		sleep:    newStore[domain.SleepEntry, *domain.SleepEntry](pool, sleepSpec()),
		focus:    newStore[domain.FocusSession, *domain.FocusSession](pool, focusSpec()),
		reading:  newStore[domain.ReadingEntry, *domain.ReadingEntry](pool, readingSpec()),
		reviews:  newStore[domain.ReviewEntry, *domain.ReviewEntry](pool, reviewSpec()),
	}
}

func (r *Repository) Workouts() domain.RecordStore[domain.Workout]     { return r.workouts }
func (r *Repository) Meals() domain.RecordStore[domain.Meal]           { return r.meals }
func (r *Repository) Sleep() domain.RecordStore[domain.SleepEntry]     { return r.sleep }
func (r *Repository) Focus() domain.RecordStore[domain.FocusSession]   { return r.focus }
func (r *Repository) Reading() domain.RecordStore[domain.ReadingEntry] { return r.reading }
func (r *Repository) Reviews() domain.RecordStore[domain.ReviewEntry]  { return r.reviews }

// SyncBatch applies every record of every kind inside one transaction.
// A failure on any record rolls back the whole batch; a reader can never
// observe a partially applied sync.
func (r *Repository) SyncBatch(ctx context.Context, batch domain.SyncBatch) (domain.SyncCounts, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.SyncCounts{}, err
	}
	defer tx.Rollback(ctx)

	for i := range batch.Reviews {
		if err := r.reviews.upsertTx(ctx, tx, &batch.Reviews[i]); err != nil {
			return domain.SyncCounts{}, err
		}
	}
	for i := range batch.Workouts {
		if err := r.workouts.upsertTx(ctx, tx, &batch.Workouts[i]); err != nil {
			return domain.SyncCounts{}, err
		}
	}
	for i := range batch.Meals {
		if err := r.meals.upsertTx(ctx, tx, &batch.Meals[i]); err != nil {
			return domain.SyncCounts{}, err
		}
	}
	for i := range batch.Sleep {
		if err := r.sleep.upsertTx(ctx, tx, &batch.Sleep[i]); err != nil {
			return domain.SyncCounts{}, err
		}
	}
	for i := range batch.Focus {
		if err := r.focus.upsertTx(ctx, tx, &batch.Focus[i]); err != nil {
			return domain.SyncCounts{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.SyncCounts{}, err
	}

	counts := domain.SyncCounts{
		Reviews:  len(batch.Reviews),
		Workouts: len(batch.Workouts),
		Meals:    len(batch.Meals),
		Sleep:    len(batch.Sleep),
		Focus:    len(batch.Focus),
	}
	observability.RecordPersisted(time.Now().UTC())
	observability.RecordBatchSynced(counts.Reviews + counts.Workouts + counts.Meals + counts.Sleep + counts.Focus)
	return counts, nil
}

var syncTables = []string{
	"review_entries",
	"workout_records",
	"meal_records",
	"sleep_records",
	"focus_sessions",
	"reading_records",
}

// LastSync returns the newest updated_at across all of the owner's records,
// nil when the owner has none.
func (r *Repository) LastSync(ctx context.Context, ownerID string) (*time.Time, error) {
	var last *time.Time
	for _, table := range syncTables {
		var ts *time.Time
		if err := r.pool.QueryRow(ctx,
			"SELECT MAX(updated_at) FROM "+table+" WHERE user_id = $1", ownerID).Scan(&ts); err != nil {
			return nil, err
		}
		if ts != nil && (last == nil || ts.After(*last)) {
			last = ts
		}
	}
	return last, nil
}
