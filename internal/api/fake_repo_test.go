package api

import (
	"context"
	"time"

	"example.com/journal/internal/domain"
)

// memStore is an in-memory RecordStore used by handler tests.
type memStore[T any, P domain.RecordPtr[T]] struct {
	recs       map[string]T
	lastFilter domain.ListFilter
}

func newMemStore[T any, P domain.RecordPtr[T]]() *memStore[T, P] {
	return &memStore[T, P]{recs: make(map[string]T)}
}

func (s *memStore[T, P]) Get(ctx context.Context, id string) (*T, error) {
	if rec, ok := s.recs[id]; ok {
		clone := rec
		return &clone, nil
	}
	return nil, nil
}

func (s *memStore[T, P]) ListByOwner(ctx context.Context, ownerID string, filter domain.ListFilter) ([]T, error) {
	s.lastFilter = filter
	out := make([]T, 0)
	for _, rec := range s.recs {
		clone := rec
		if P(&clone).Meta().OwnerID == ownerID {
			out = append(out, clone)
		}
		if len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (s *memStore[T, P]) Upsert(ctx context.Context, rec *T) error {
	meta := P(rec).Meta()
	now := time.Now().UTC()
	if existing, ok := s.recs[meta.ID]; ok {
		stored := P(&existing).Meta()
		if stored.OwnerID != meta.OwnerID {
			return domain.ErrForbidden
		}
		meta.CreatedAt = stored.CreatedAt
	} else {
		meta.CreatedAt = now
	}
	meta.UpdatedAt = now
	s.recs[meta.ID] = *rec
	return nil
}

func (s *memStore[T, P]) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	rec, ok := s.recs[id]
	if !ok || P(&rec).Meta().OwnerID != ownerID {
		return false, nil
	}
	delete(s.recs, id)
	return true, nil
}

type fakeRepo struct {
	workouts *memStore[domain.Workout, *domain.Workout]
	meals    *memStore[domain.Meal, *domain.Meal]
	sleep    *memStore[domain.SleepEntry, *domain.SleepEntry]
	focus    *memStore[domain.FocusSession, *domain.FocusSession]
	reading  *memStore[domain.ReadingEntry, *domain.ReadingEntry]
	reviews  *memStore[domain.ReviewEntry, *domain.ReviewEntry]

	lastSync *time.Time
	users    map[string]*domain.User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		workouts: newMemStore[domain.Workout, *domain.Workout](),
		meals:    newMemStore[domain.Meal, *domain.Meal](),
		sleep:    newMemStore[domain.SleepEntry, *domain.SleepEntry](),
		focus:    newMemStore[domain.FocusSession, *domain.FocusSession](),
		reading:  newMemStore[domain.ReadingEntry, *domain.ReadingEntry](),
		reviews:  newMemStore[domain.ReviewEntry, *domain.ReviewEntry](),
		users:    make(map[string]*domain.User),
	}
}

func (f *fakeRepo) Workouts() domain.RecordStore[domain.Workout]     { return f.workouts }
func (f *fakeRepo) Meals() domain.RecordStore[domain.Meal]           { return f.meals }
func (f *fakeRepo) Sleep() domain.RecordStore[domain.SleepEntry]     { return f.sleep }
func (f *fakeRepo) Focus() domain.RecordStore[domain.FocusSession]   { return f.focus }
func (f *fakeRepo) Reading() domain.RecordStore[domain.ReadingEntry] { return f.reading }
func (f *fakeRepo) Reviews() domain.RecordStore[domain.ReviewEntry]  { return f.reviews }

func (f *fakeRepo) SyncBatch(ctx context.Context, batch domain.SyncBatch) (domain.SyncCounts, error) {
	for i := range batch.Reviews {
		if err := f.reviews.Upsert(ctx, &batch.Reviews[i]); err != nil {
			return domain.SyncCounts{}, err
		}
	}
	for i := range batch.Workouts {
		if err := f.workouts.Upsert(ctx, &batch.Workouts[i]); err != nil {
			return domain.SyncCounts{}, err
		}
	}
	for i := range batch.Meals {
		if err := f.meals.Upsert(ctx, &batch.Meals[i]); err != nil {
			return domain.SyncCounts{}, err
		}
	}
	for i := range batch.Sleep {
		if err := f.sleep.Upsert(ctx, &batch.Sleep[i]); err != nil {
			return domain.SyncCounts{}, err
		}
	}
	for i := range batch.Focus {
		if err := f.focus.Upsert(ctx, &batch.Focus[i]); err != nil {
			return domain.SyncCounts{}, err
		}
	}
	now := time.Now().UTC()
	f.lastSync = &now
	return domain.SyncCounts{
		Reviews:  len(batch.Reviews),
		Workouts: len(batch.Workouts),
		Meals:    len(batch.Meals),
		Sleep:    len(batch.Sleep),
		Focus:    len(batch.Focus),
	}, nil
}

func (f *fakeRepo) LastSync(ctx context.Context, ownerID string) (*time.Time, error) {
	return f.lastSync, nil
}

func (f *fakeRepo) CreateUser(ctx context.Context, user *domain.User) error {
	for _, u := range f.users {
		if u.Username == user.Username {
			return domain.ErrConflict
		}
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeRepo) UserByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) UserByID(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := f.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, nil
}

func (f *fakeRepo) UpdateProfile(ctx context.Context, userID string, patch domain.ProfilePatch) (*domain.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return nil, nil
	}
	if patch.Nickname != nil {
		user.Nickname = patch.Nickname
	}
	if patch.Avatar != nil {
		user.Avatar = patch.Avatar
	}
	if patch.Signature != nil {
		user.Signature = patch.Signature
	}
	if patch.Email != nil {
		user.Email = patch.Email
	}
	user.UpdatedAt = time.Now().UTC()
	clone := *user
	return &clone, nil
}
