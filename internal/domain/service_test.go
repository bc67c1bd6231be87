package domain

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// memStore is an in-memory RecordStore mirroring the replace-by-id semantics
// of the real repository.
type memStore[T any, P RecordPtr[T]] struct {
	recs map[string]T
}

func newMemStore[T any, P RecordPtr[T]]() *memStore[T, P] {
	return &memStore[T, P]{recs: make(map[string]T)}
}

func (s *memStore[T, P]) Get(ctx context.Context, id string) (*T, error) {
	if rec, ok := s.recs[id]; ok {
		clone := rec
		return &clone, nil
	}
	return nil, nil
}

func (s *memStore[T, P]) ListByOwner(ctx context.Context, ownerID string, filter ListFilter) ([]T, error) {
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
			return ErrForbidden
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
	workouts *memStore[Workout, *Workout]
	meals    *memStore[Meal, *Meal]
	sleep    *memStore[SleepEntry, *SleepEntry]
	focus    *memStore[FocusSession, *FocusSession]
	reading  *memStore[ReadingEntry, *ReadingEntry]
	reviews  *memStore[ReviewEntry, *ReviewEntry]

	lastBatch *SyncBatch
	lastSync  *time.Time
	users     map[string]*User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		workouts: newMemStore[Workout, *Workout](),
		meals:    newMemStore[Meal, *Meal](),
		sleep:    newMemStore[SleepEntry, *SleepEntry](),
		focus:    newMemStore[FocusSession, *FocusSession](),
		reading:  newMemStore[ReadingEntry, *ReadingEntry](),
		reviews:  newMemStore[ReviewEntry, *ReviewEntry](),
		users:    make(map[string]*User),
	}
}

func (f *fakeRepo) Workouts() RecordStore[Workout]     { return f.workouts }
func (f *fakeRepo) Meals() RecordStore[Meal]           { return f.meals }
func (f *fakeRepo) Sleep() RecordStore[SleepEntry]     { return f.sleep }
func (f *fakeRepo) Focus() RecordStore[FocusSession]   { return f.focus }
func (f *fakeRepo) Reading() RecordStore[ReadingEntry] { return f.reading }
func (f *fakeRepo) Reviews() RecordStore[ReviewEntry]  { return f.reviews }

func (f *fakeRepo) SyncBatch(ctx context.Context, batch SyncBatch) (SyncCounts, error) {
	f.lastBatch = &batch
	for i := range batch.Sleep {
		if err := f.sleep.Upsert(ctx, &batch.Sleep[i]); err != nil {
			return SyncCounts{}, err
		}
	}
	for i := range batch.Workouts {
		if err := f.workouts.Upsert(ctx, &batch.Workouts[i]); err != nil {
			return SyncCounts{}, err
		}
	}
	return SyncCounts{
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

func (f *fakeRepo) CreateUser(ctx context.Context, user *User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeRepo) UserByUsername(ctx context.Context, username string) (*User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) UserByID(ctx context.Context, id string) (*User, error) {
	return f.users[id], nil
}

func (f *fakeRepo) UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (*User, error) {
	user, ok := f.users[userID]
	if !ok {
		return nil, nil
	}
	if patch.Nickname != nil {
		user.Nickname = patch.Nickname
	}
	return user, nil
}

func TestUpsertRecordMintsIDAndStampsOwner(t *testing.T) {
	repo := newFakeRepo()
	rec := Workout{
		Type:            "running",
		StartTime:       "2024-01-01T07:00:00Z",
		DurationMinutes: intPtr(30),
		// the embedded owner must be discarded
		RecordMeta: RecordMeta{OwnerID: "someone-else"},
	}

	id, err := UpsertRecord[Workout](context.Background(), repo.Workouts(), "alice", &rec)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	stored, err := repo.Workouts().Get(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, "alice", stored.OwnerID)
}

func TestUpsertRecordIdempotent(t *testing.T) {
	repo := newFakeRepo()
	rec := SleepEntry{
		RecordMeta: RecordMeta{ID: "s1"},
		Date:       "2024-01-01",
		Bedtime:    "23:00",
		WakeTime:   "07:00",
	}

	_, err := UpsertRecord[SleepEntry](context.Background(), repo.Sleep(), "alice", &rec)
	require.NoError(t, err)

	again := rec
	_, err = UpsertRecord[SleepEntry](context.Background(), repo.Sleep(), "alice", &again)
	require.NoError(t, err)

	require.Len(t, repo.sleep.recs, 1)
	stored, err := repo.Sleep().Get(context.Background(), "s1")
	require.NoError(t, err)
	require.Equal(t, "23:00", stored.Bedtime)
}

func TestUpsertRecordRejectsForeignID(t *testing.T) {
	repo := newFakeRepo()
	rec := SleepEntry{
		RecordMeta: RecordMeta{ID: "s1"},
		Date:       "2024-01-01",
		Bedtime:    "23:00",
		WakeTime:   "07:00",
	}
	_, err := UpsertRecord[SleepEntry](context.Background(), repo.Sleep(), "alice", &rec)
	require.NoError(t, err)

	steal := rec
	_, err = UpsertRecord[SleepEntry](context.Background(), repo.Sleep(), "bob", &steal)
	require.ErrorIs(t, err, ErrForbidden)

	stored, err := repo.Sleep().Get(context.Background(), "s1")
	require.NoError(t, err)
	require.Equal(t, "alice", stored.OwnerID)
}

func TestGetRecordOutcomes(t *testing.T) {
	repo := newFakeRepo()
	rec := ReviewEntry{RecordMeta: RecordMeta{ID: "rev1"}, Date: "2024-01-01", Mood: "good"}
	_, err := UpsertRecord[ReviewEntry](context.Background(), repo.Reviews(), "alice", &rec)
	require.NoError(t, err)

	_, err = GetRecord[ReviewEntry](context.Background(), repo.Reviews(), "missing", "alice")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = GetRecord[ReviewEntry](context.Background(), repo.Reviews(), "rev1", "bob")
	require.ErrorIs(t, err, ErrForbidden)

	got, err := GetRecord[ReviewEntry](context.Background(), repo.Reviews(), "rev1", "alice")
	require.NoError(t, err)
	require.Equal(t, "good", got.Mood)
}

func TestDeleteRecordNotFound(t *testing.T) {
	repo := newFakeRepo()
	err := DeleteRecord(context.Background(), repo.Workouts(), "missing", "alice")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRecordScopedToOwner(t *testing.T) {
	repo := newFakeRepo()
	rec := Workout{
		RecordMeta:      RecordMeta{ID: "w1"},
		Type:            "running",
		StartTime:       "2024-01-01T07:00:00Z",
		DurationMinutes: intPtr(30),
	}
	_, err := UpsertRecord[Workout](context.Background(), repo.Workouts(), "alice", &rec)
	require.NoError(t, err)

	err = DeleteRecord(context.Background(), repo.Workouts(), "w1", "bob")
	require.ErrorIs(t, err, ErrNotFound)

	err = DeleteRecord(context.Background(), repo.Workouts(), "w1", "alice")
	require.NoError(t, err)
}

func TestSyncBatchStampsOwnerAndCounts(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	batch := SyncBatch{
		Sleep: []SleepEntry{
			{RecordMeta: RecordMeta{ID: "s1", OwnerID: "mallory"}, Date: "2024-01-01", Bedtime: "23:00", WakeTime: "07:00"},
		},
		Workouts: []Workout{
			{RecordMeta: RecordMeta{ID: "w1"}, Type: "running", StartTime: "2024-01-01T07:00:00Z", DurationMinutes: intPtr(30)},
			{Type: "cycling", StartTime: "2024-01-02T07:00:00Z", DurationMinutes: intPtr(45)},
		},
	}

	counts, err := svc.SyncBatch(context.Background(), "alice", batch)
	require.NoError(t, err)
	require.Equal(t, 1, counts.Sleep)
	require.Equal(t, 2, counts.Workouts)
	require.Zero(t, counts.Meals)

	require.NotNil(t, repo.lastBatch)
	for _, s := range repo.lastBatch.Sleep {
		require.Equal(t, "alice", s.OwnerID)
	}
	for _, w := range repo.lastBatch.Workouts {
		require.Equal(t, "alice", w.OwnerID)
		require.NotEmpty(t, w.ID)
	}
}

func TestSyncBatchValidationAborts(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	batch := SyncBatch{
		Sleep: []SleepEntry{{RecordMeta: RecordMeta{ID: "s1"}, Date: "2024-01-01"}},
	}

	_, err := svc.SyncBatch(context.Background(), "alice", batch)
	require.True(t, IsValidation(err))
	require.Nil(t, repo.lastBatch, "repository must not see an invalid batch")
}

func TestUpdateProfileRejectsEmptyPatch(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	_, err := svc.UpdateProfile(context.Background(), "alice", ProfilePatch{})
	require.True(t, IsValidation(err))
}
