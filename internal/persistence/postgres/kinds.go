package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"example.com/journal/internal/domain"
)

func workoutSpec() kindSpec[domain.Workout] {
	return kindSpec[domain.Workout]{
		table:   "workout_records",
		timeCol: "start_time",
		cols:    []string{"type", "start_time", "duration_minutes", "distance_km", "calories_kcal", "notes"},
		bind: func(w *domain.Workout) ([]any, error) {
			return []any{w.Type, w.StartTime, w.DurationMinutes, w.DistanceKm, w.CaloriesKcal, w.Notes}, nil
		},
		scan: func(row rowScanner) (*domain.Workout, error) {
			var w domain.Workout
			if err := row.Scan(&w.ID, &w.OwnerID, &w.Type, &w.StartTime, &w.DurationMinutes,
				&w.DistanceKm, &w.CaloriesKcal, &w.Notes, &w.CreatedAt, &w.UpdatedAt); err != nil {
				return nil, err
			}
			return &w, nil
		},
	}
}

func mealSpec() kindSpec[domain.Meal] {
	return kindSpec[domain.Meal]{
		table:   "meal_records",
		timeCol: "timestamp",
		cols:    []string{"meal_type", "timestamp", "notes"},
		bind: func(m *domain.Meal) ([]any, error) {
			return []any{m.MealType, m.Timestamp, m.Notes}, nil
		},
		scan: func(row rowScanner) (*domain.Meal, error) {
			var m domain.Meal
			if err := row.Scan(&m.ID, &m.OwnerID, &m.MealType, &m.Timestamp, &m.Notes,
				&m.CreatedAt, &m.UpdatedAt); err != nil {
				return nil, err
			}
			return &m, nil
		},
		afterWrite: replaceFoodItems,
		afterRead:  loadFoodItems,
	}
}

// replaceFoodItems swaps the meal's item list wholesale. The items share the
// parent's lifetime, so an update is delete-then-reinsert, never a merge.
func replaceFoodItems(ctx context.Context, db querier, m *domain.Meal) error {
	if _, err := db.Exec(ctx, "DELETE FROM food_items WHERE meal_id = $1", m.ID); err != nil {
		return err
	}
	const insert = `INSERT INTO food_items (id, meal_id, position, name, calories, protein, carbs, fat, image_url)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	for i, item := range m.Items {
		if _, err := db.Exec(ctx, insert,
			item.ID, m.ID, i, item.Name, item.Calories, item.Protein, item.Carbs, item.Fat, item.ImageURL); err != nil {
			return err
		}
	}
	return nil
}

func loadFoodItems(ctx context.Context, db querier, meals []domain.Meal) error {
	const query = `SELECT id, name, calories, protein, carbs, fat, image_url
        FROM food_items WHERE meal_id = $1 ORDER BY position`
	for i := range meals {
		rows, err := db.Query(ctx, query, meals[i].ID)
		if err != nil {
			return err
		}
		items := make([]domain.FoodItem, 0, 4)
		for rows.Next() {
			var item domain.FoodItem
			if err := rows.Scan(&item.ID, &item.Name, &item.Calories, &item.Protein,
				&item.Carbs, &item.Fat, &item.ImageURL); err != nil {
				rows.Close()
				return err
			}
			items = append(items, item)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		meals[i].Items = items
	}
	return nil
}

func sleepSpec() kindSpec[domain.SleepEntry] {
	return kindSpec[domain.SleepEntry]{
		table:   "sleep_records",
		timeCol: "date",
		cols:    []string{"date", "bedtime", "wake_time", "note", "sleep_quality"},
		bind: func(s *domain.SleepEntry) ([]any, error) {
			return []any{s.Date, s.Bedtime, s.WakeTime, s.Note, s.SleepQuality}, nil
		},
		scan: func(row rowScanner) (*domain.SleepEntry, error) {
			var s domain.SleepEntry
			if err := row.Scan(&s.ID, &s.OwnerID, &s.Date, &s.Bedtime, &s.WakeTime,
				&s.Note, &s.SleepQuality, &s.CreatedAt, &s.UpdatedAt); err != nil {
				return nil, err
			}
			return &s, nil
		},
	}
}

func focusSpec() kindSpec[domain.FocusSession] {
	return kindSpec[domain.FocusSession]{
		table:   "focus_sessions",
		timeCol: "start_time",
		cols:    []string{"start_time", "end_time", "target_minutes", "task_name", "completed"},
		bind: func(f *domain.FocusSession) ([]any, error) {
			return []any{f.StartTime, f.EndTime, f.TargetMinutes, f.TaskName, f.Completed}, nil
		},
		scan: func(row rowScanner) (*domain.FocusSession, error) {
			var f domain.FocusSession
			if err := row.Scan(&f.ID, &f.OwnerID, &f.StartTime, &f.EndTime, &f.TargetMinutes,
				&f.TaskName, &f.Completed, &f.CreatedAt, &f.UpdatedAt); err != nil {
				return nil, err
			}
			return &f, nil
		},
	}
}

func readingSpec() kindSpec[domain.ReadingEntry] {
	return kindSpec[domain.ReadingEntry]{
		table:   "reading_records",
		timeCol: "start_time",
		cols: []string{"book_title", "book_author", "start_time", "duration_minutes",
			"pages_read", "notes", "excerpt", "ai_summary"},
		bind: func(r *domain.ReadingEntry) ([]any, error) {
			return []any{r.BookTitle, r.BookAuthor, r.StartTime, r.DurationMinutes,
				r.PagesRead, r.Notes, r.Excerpt, r.AISummary}, nil
		},
		scan: func(row rowScanner) (*domain.ReadingEntry, error) {
			var r domain.ReadingEntry
			if err := row.Scan(&r.ID, &r.OwnerID, &r.BookTitle, &r.BookAuthor, &r.StartTime,
				&r.DurationMinutes, &r.PagesRead, &r.Notes, &r.Excerpt, &r.AISummary,
				&r.CreatedAt, &r.UpdatedAt); err != nil {
				return nil, err
			}
			return &r, nil
		},
	}
}

func reviewSpec() kindSpec[domain.ReviewEntry] {
	return kindSpec[domain.ReviewEntry]{
		table:   "review_entries",
		timeCol: "date",
		cols: []string{"date", "mood", "highlights", "improvements", "tomorrow_plans",
			"ai_summary", "note"},
		bind: func(r *domain.ReviewEntry) ([]any, error) {
			hl, err := encodeList(r.Highlights)
			if err != nil {
				return nil, err
			}
			im, err := encodeList(r.Improvements)
			if err != nil {
				return nil, err
			}
			tp, err := encodeList(r.TomorrowPlans)
			if err != nil {
				return nil, err
			}
			return []any{r.Date, r.Mood, hl, im, tp, r.AISummary, r.Note}, nil
		},
		scan: func(row rowScanner) (*domain.ReviewEntry, error) {
			var (
				r          domain.ReviewEntry
				hl, im, tp *string
			)
			if err := row.Scan(&r.ID, &r.OwnerID, &r.Date, &r.Mood, &hl, &im, &tp,
				&r.AISummary, &r.Note, &r.CreatedAt, &r.UpdatedAt); err != nil {
				return nil, err
			}
			var err error
			if r.Highlights, err = decodeList(hl); err != nil {
				return nil, err
			}
			if r.Improvements, err = decodeList(im); err != nil {
				return nil, err
			}
			if r.TomorrowPlans, err = decodeList(tp); err != nil {
				return nil, err
			}
			return &r, nil
		},
	}
}

// The review list fields are structured []string in the domain; the JSON-text
// form exists only at this storage boundary.
func encodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("encode list field: %w", err)
	}
	return string(raw), nil
}

func decodeList(raw *string) ([]string, error) {
	if raw == nil || *raw == "" {
		return []string{}, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(*raw), &values); err != nil {
		return nil, fmt.Errorf("decode list field: %w", err)
	}
	return values, nil
}
