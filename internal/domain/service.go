package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RecordStore is the per-kind persistence contract. Get is unscoped so the
// ownership check can distinguish absent from owned-by-other; ListByOwner and
// Delete are owner-scoped at the query itself.
type RecordStore[T any] interface {
	Get(ctx context.Context, id string) (*T, error)
	ListByOwner(ctx context.Context, ownerID string, filter ListFilter) ([]T, error)
	Upsert(ctx context.Context, rec *T) error
	Delete(ctx context.Context, id, ownerID string) (bool, error)
}

// SyncBatch is one multi-kind reconciliation payload. Reading entries are not
// part of the batch protocol; devices push them through the resource route.
type SyncBatch struct {
	Reviews  []ReviewEntry  `json:"reviews"`
	Workouts []Workout      `json:"workouts"`
	Meals    []Meal         `json:"meals"`
	Sleep    []SleepEntry   `json:"sleep"`
	Focus    []FocusSession `json:"focus"`
}

// SyncCounts reports how many records of each kind a batch applied.
type SyncCounts struct {
	Reviews  int `json:"reviewsCount"`
	Workouts int `json:"workoutsCount"`
	Meals    int `json:"mealsCount"`
	Sleep    int `json:"sleepCount"`
	Focus    int `json:"focusCount"`
}

// Repository aggregates the per-kind stores with the operations that span
// kinds or touch accounts. Implementations must apply SyncBatch atomically:
// either every record in the payload is durable or none are.
type Repository interface {
	Workouts() RecordStore[Workout]
	Meals() RecordStore[Meal]
	Sleep() RecordStore[SleepEntry]
	Focus() RecordStore[FocusSession]
	Reading() RecordStore[ReadingEntry]
	Reviews() RecordStore[ReviewEntry]

	SyncBatch(ctx context.Context, batch SyncBatch) (SyncCounts, error)
	LastSync(ctx context.Context, ownerID string) (*time.Time, error)

	CreateUser(ctx context.Context, user *User) error
	UserByUsername(ctx context.Context, username string) (*User, error)
	UserByID(ctx context.Context, id string) (*User, error)
	UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (*User, error)
}

// Service orchestrates record workflows over a Repository.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Repo exposes the per-kind stores for the generic record operations.
func (s *Service) Repo() Repository { return s.repo }

// GetRecord authorizes and fetches one record by id. Absent ids yield
// ErrNotFound; records owned by someone else yield ErrForbidden. The two
// outcomes stay distinguishable on purpose.
func GetRecord[T any, P RecordPtr[T]](ctx context.Context, store RecordStore[T], id, ownerID string) (*T, error) {
	rec, err := store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	if P(rec).Meta().OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return rec, nil
}

// UpsertRecord applies the create-or-update protocol: validate, mint an id if
// the client sent none, force-stamp the caller as owner, then replace by id.
// The returned id is the one the record was stored under.
func UpsertRecord[T any, P RecordPtr[T]](ctx context.Context, store RecordStore[T], ownerID string, rec *T) (string, error) {
	meta := P(rec).Meta()
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	if err := P(rec).Validate(); err != nil {
		return "", err
	}
	meta.OwnerID = ownerID
	if err := store.Upsert(ctx, rec); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// ListRecords returns the caller's records ordered by the kind's time field
// descending, capped by the filter limit.
func ListRecords[T any](ctx context.Context, store RecordStore[T], ownerID string, filter ListFilter) ([]T, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultListLimit
	}
	return store.ListByOwner(ctx, ownerID, filter)
}

// DeleteRecord removes the caller's record by id. An id that is absent or
// owned by someone else both come back as ErrNotFound: the delete is scoped
// to the owner at the query.
func DeleteRecord[T any](ctx context.Context, store RecordStore[T], id, ownerID string) error {
	deleted, err := store.Delete(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// SyncBatch validates and owner-stamps every record in the payload, then
// hands the whole batch to the repository for atomic application.
func (s *Service) SyncBatch(ctx context.Context, ownerID string, batch SyncBatch) (SyncCounts, error) {
	if err := prepareBatch[ReviewEntry](batch.Reviews, ownerID); err != nil {
		return SyncCounts{}, err
	}
	if err := prepareBatch[Workout](batch.Workouts, ownerID); err != nil {
		return SyncCounts{}, err
	}
	if err := prepareBatch[Meal](batch.Meals, ownerID); err != nil {
		return SyncCounts{}, err
	}
	if err := prepareBatch[SleepEntry](batch.Sleep, ownerID); err != nil {
		return SyncCounts{}, err
	}
	if err := prepareBatch[FocusSession](batch.Focus, ownerID); err != nil {
		return SyncCounts{}, err
	}
	return s.repo.SyncBatch(ctx, batch)
}

func prepareBatch[T any, P RecordPtr[T]](recs []T, ownerID string) error {
	for i := range recs {
		rec := P(&recs[i])
		meta := rec.Meta()
		if meta.ID == "" {
			meta.ID = uuid.NewString()
		}
		if err := rec.Validate(); err != nil {
			return err
		}
		// Whatever owner the device embedded is discarded; a client can
		// never write records under another identity.
		meta.OwnerID = ownerID
	}
	return nil
}

// LastSync returns the newest updated_at across all of the owner's records,
// or nil when the owner has none. Clients compare it against their local
// cursor to choose between a full and an incremental pull.
func (s *Service) LastSync(ctx context.Context, ownerID string) (*time.Time, error) {
	return s.repo.LastSync(ctx, ownerID)
}

// CreateUser persists a new account.
func (s *Service) CreateUser(ctx context.Context, user *User) error {
	return s.repo.CreateUser(ctx, user)
}

// UserByUsername looks up an account for login; nil when unknown.
func (s *Service) UserByUsername(ctx context.Context, username string) (*User, error) {
	return s.repo.UserByUsername(ctx, username)
}

// Profile fetches the caller's account.
func (s *Service) Profile(ctx context.Context, userID string) (*User, error) {
	user, err := s.repo.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// UpdateProfile applies a partial patch to the caller's account.
func (s *Service) UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (*User, error) {
	if patch.Empty() {
		return nil, Validationf("no fields to update")
	}
	user, err := s.repo.UpdateProfile(ctx, userID, patch)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}
