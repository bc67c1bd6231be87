// Package domain defines the journaling record kinds and the business rules
// shared by every kind: idempotent upsert, ownership scoping, and batch sync.
package domain

import "time"

// RecordMeta carries the fields every record kind shares. The id is minted on
// the client so the same logical record keeps one identity across devices;
// created_at and updated_at are always server-assigned.
type RecordMeta struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"userId,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// Meta exposes the shared fields to generic record operations.
func (m *RecordMeta) Meta() *RecordMeta { return m }

// RecordPtr constrains the pointer type of a record kind.
type RecordPtr[T any] interface {
	*T
	Meta() *RecordMeta
	Validate() error
}

// Workout is one exercise session.
type Workout struct {
	RecordMeta
	Type            string  `json:"type"`
	StartTime       string  `json:"startTime"`
	DurationMinutes *int    `json:"durationMinutes"`
	DistanceKm      float64 `json:"distanceKm"`
	CaloriesKcal    int     `json:"caloriesKcal"`
	Notes           *string `json:"notes"`
}

func (w *Workout) Validate() error {
	if w.ID == "" || w.Type == "" || w.StartTime == "" || w.DurationMinutes == nil {
		return missingFields("id", "type", "startTime", "durationMinutes")
	}
	return nil
}

// FoodItem belongs to exactly one meal; the item list is replaced wholesale on
// every meal upsert, never merged.
type FoodItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Calories int     `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	ImageURL *string `json:"imageUrl"`
}

// Meal is one eating occasion together with its food items.
type Meal struct {
	RecordMeta
	MealType  string     `json:"mealType"`
	Timestamp string     `json:"timestamp"`
	Notes     *string    `json:"notes"`
	Items     []FoodItem `json:"items"`
}

func (m *Meal) Validate() error {
	if m.ID == "" || m.MealType == "" || m.Timestamp == "" {
		return missingFields("id", "mealType", "timestamp")
	}
	for _, item := range m.Items {
		if item.ID == "" || item.Name == "" {
			return missingFields("items[].id", "items[].name")
		}
	}
	return nil
}

// SleepEntry records one night of sleep.
type SleepEntry struct {
	RecordMeta
	Date         string  `json:"date"`
	Bedtime      string  `json:"bedtime"`
	WakeTime     string  `json:"wakeTime"`
	Note         *string `json:"note"`
	SleepQuality *int    `json:"sleepQuality"`
}

func (s *SleepEntry) Validate() error {
	if s.ID == "" || s.Date == "" || s.Bedtime == "" || s.WakeTime == "" {
		return missingFields("id", "date", "bedtime", "wakeTime")
	}
	return nil
}

// FocusSession records one block of focused work.
type FocusSession struct {
	RecordMeta
	StartTime     string  `json:"startTime"`
	EndTime       string  `json:"endTime"`
	TargetMinutes *int    `json:"targetMinutes"`
	TaskName      *string `json:"taskName"`
	Completed     bool    `json:"completed"`
}

func (f *FocusSession) Validate() error {
	if f.ID == "" || f.StartTime == "" || f.EndTime == "" || f.TargetMinutes == nil {
		return missingFields("id", "startTime", "endTime", "targetMinutes")
	}
	return nil
}

// ReadingEntry records one reading session.
type ReadingEntry struct {
	RecordMeta
	BookTitle       string  `json:"bookTitle"`
	BookAuthor      *string `json:"bookAuthor"`
	StartTime       string  `json:"startTime"`
	DurationMinutes *int    `json:"durationMinutes"`
	PagesRead       *int    `json:"pagesRead"`
	Notes           *string `json:"notes"`
	Excerpt         *string `json:"excerpt"`
	AISummary       *string `json:"aiSummary"`
}

func (r *ReadingEntry) Validate() error {
	if r.ID == "" || r.BookTitle == "" || r.StartTime == "" || r.DurationMinutes == nil {
		return missingFields("id", "bookTitle", "startTime", "durationMinutes")
	}
	return nil
}

// ReviewEntry is a daily retrospective. The list fields are structured in the
// domain; their JSON-text encoding is a storage-layer concern.
type ReviewEntry struct {
	RecordMeta
	Date          string   `json:"date"`
	Mood          string   `json:"mood"`
	Highlights    []string `json:"highlights"`
	Improvements  []string `json:"improvements"`
	TomorrowPlans []string `json:"tomorrowPlans"`
	AISummary     *string  `json:"aiSummary"`
	Note          *string  `json:"note"`
}

func (r *ReviewEntry) Validate() error {
	if r.ID == "" || r.Date == "" || r.Mood == "" {
		return missingFields("id", "date", "mood")
	}
	return nil
}

// ListFilter narrows a per-owner listing. Date bounds are inclusive and
// compared against the kind's natural time field.
type ListFilter struct {
	StartDate string
	EndDate   string
	Limit     int
}

// DefaultListLimit caps listings when the caller supplies no limit.
const DefaultListLimit = 100
