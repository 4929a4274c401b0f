// internal/storage/sqlite.go
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"macro-log/internal/engine"
	"macro-log/internal/models"
)

// SQLiteStorage persists the store snapshot. Each Save replaces the whole
// snapshot in one transaction.
type SQLiteStorage struct {
	db *sql.DB
}

var _ engine.Persister = (*SQLiteStorage)(nil)

func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer; sqlite serializes anyway.
	db.SetMaxOpenConns(1)

	storage := &SQLiteStorage{db: db}
	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS food_logs (
        id TEXT PRIMARY KEY,
        date TEXT NOT NULL,
        created_at TEXT NOT NULL,
        updated_at TEXT NOT NULL,
        user_title TEXT,
        generated_title TEXT,
        user_description TEXT,
        generated_description TEXT,
        user_calories REAL,
        generated_calories REAL,
        user_protein REAL,
        generated_protein REAL,
        user_carbs REAL,
        generated_carbs REAL,
        user_fat REAL,
        generated_fat REAL,
        estimation_confidence INTEGER,
        needs_user_review INTEGER NOT NULL DEFAULT 0,
        image_ref TEXT NOT NULL DEFAULT ''
    );

    CREATE TABLE IF NOT EXISTS food_components (
        log_id TEXT NOT NULL,
        position INTEGER NOT NULL,
        name TEXT NOT NULL,
        amount REAL NOT NULL,
        unit TEXT NOT NULL,
        recommended_amount REAL,
        recommended_unit TEXT,
        needs_refinement INTEGER NOT NULL DEFAULT 0,
        PRIMARY KEY (log_id, position)
    );

    CREATE TABLE IF NOT EXISTS favorites (
        id TEXT PRIMARY KEY,
        created_at TEXT NOT NULL,
        title TEXT NOT NULL,
        description TEXT NOT NULL,
        calories REAL NOT NULL,
        protein REAL NOT NULL,
        carbs REAL NOT NULL,
        fat REAL NOT NULL,
        estimation_confidence INTEGER NOT NULL
    );

    CREATE TABLE IF NOT EXISTS settings (
        id INTEGER PRIMARY KEY CHECK (id = 1),
        sex TEXT NOT NULL,
        age INTEGER NOT NULL,
        weight REAL NOT NULL,
        height REAL NOT NULL,
        activity_level TEXT NOT NULL,
        calorie_goal_type TEXT NOT NULL,
        protein_factor REAL NOT NULL,
        fat_percentage REAL NOT NULL,
        calorie_override INTEGER
    );

    CREATE INDEX IF NOT EXISTS idx_food_logs_date ON food_logs(date);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Save replaces everything on disk with snap.
func (s *SQLiteStorage) Save(ctx context.Context, snap *engine.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"food_components", "food_logs", "favorites", "settings"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	logQuery := `
        INSERT INTO food_logs (id, date, created_at, updated_at,
            user_title, generated_title, user_description, generated_description,
            user_calories, generated_calories, user_protein, generated_protein,
            user_carbs, generated_carbs, user_fat, generated_fat,
            estimation_confidence, needs_user_review, image_ref)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	componentQuery := `
        INSERT INTO food_components (log_id, position, name, amount, unit,
            recommended_amount, recommended_unit, needs_refinement)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `
	for _, l := range snap.Logs {
		_, err = tx.ExecContext(ctx, logQuery,
			l.ID, l.Date, formatTime(l.CreatedAt), formatTime(l.UpdatedAt),
			nullable(l.UserTitle), nullable(l.GeneratedTitle), nullable(l.UserDescription), nullable(l.GeneratedDescription),
			nullable(l.UserCalories), nullable(l.GeneratedCalories), nullable(l.UserProtein), nullable(l.GeneratedProtein),
			nullable(l.UserCarbs), nullable(l.GeneratedCarbs), nullable(l.UserFat), nullable(l.GeneratedFat),
			nullable(l.EstimationConfidence), boolInt(l.NeedsUserReview), l.ImageRef)
		if err != nil {
			return fmt.Errorf("failed to insert log %s: %w", l.ID, err)
		}

		for i, c := range l.FoodComponents {
			var recAmount, recUnit interface{}
			if m := c.RecommendedMeasurement; m != nil {
				recAmount, recUnit = m.Amount, string(m.Unit)
			}
			_, err = tx.ExecContext(ctx, componentQuery,
				l.ID, i, c.Name, c.Amount, string(c.Unit), recAmount, recUnit, boolInt(c.NeedsRefinement))
			if err != nil {
				return fmt.Errorf("failed to insert component: %w", err)
			}
		}
	}

	favoriteQuery := `
        INSERT INTO favorites (id, created_at, title, description, calories, protein, carbs, fat, estimation_confidence)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	for _, f := range snap.Favorites {
		_, err = tx.ExecContext(ctx, favoriteQuery,
			f.ID, formatTime(f.CreatedAt), f.Title, f.Description,
			f.Macros.Calories, f.Macros.Protein, f.Macros.Carbs, f.Macros.Fat, f.EstimationConfidence)
		if err != nil {
			return fmt.Errorf("failed to insert favorite %s: %w", f.ID, err)
		}
	}

	if st := snap.Settings; st != nil {
		_, err = tx.ExecContext(ctx, `
            INSERT INTO settings (id, sex, age, weight, height, activity_level, calorie_goal_type,
                protein_factor, fat_percentage, calorie_override)
            VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        `, string(st.Sex), st.Age, st.Weight, st.Height, string(st.ActivityLevel),
			string(st.CalorieGoalType), st.ProteinFactor, st.FatPercentage, nullable(st.CalorieOverride))
		if err != nil {
			return fmt.Errorf("failed to insert settings: %w", err)
		}
	}

	return tx.Commit()
}

// Load reads the snapshot. An empty database yields an empty snapshot.
func (s *SQLiteStorage) Load(ctx context.Context) (*engine.Snapshot, error) {
	snap := &engine.Snapshot{}

	logs, err := s.loadLogs(ctx)
	if err != nil {
		return nil, err
	}
	snap.Logs = logs

	if snap.Favorites, err = s.loadFavorites(ctx); err != nil {
		return nil, err
	}
	if snap.Settings, err = s.loadSettings(ctx); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *SQLiteStorage) loadLogs(ctx context.Context) ([]models.FoodLog, error) {
	query := `
        SELECT id, date, created_at, updated_at,
            user_title, generated_title, user_description, generated_description,
            user_calories, generated_calories, user_protein, generated_protein,
            user_carbs, generated_carbs, user_fat, generated_fat,
            estimation_confidence, needs_user_review, image_ref
        FROM food_logs
        ORDER BY created_at, id
    `
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query logs: %w", err)
	}
	defer rows.Close()

	var logs []models.FoodLog
	index := make(map[string]int)
	for rows.Next() {
		var l models.FoodLog
		var createdAtStr, updatedAtStr string

		err := rows.Scan(
			&l.ID, &l.Date, &createdAtStr, &updatedAtStr,
			&l.UserTitle, &l.GeneratedTitle, &l.UserDescription, &l.GeneratedDescription,
			&l.UserCalories, &l.GeneratedCalories, &l.UserProtein, &l.GeneratedProtein,
			&l.UserCarbs, &l.GeneratedCarbs, &l.UserFat, &l.GeneratedFat,
			&l.EstimationConfidence, &l.NeedsUserReview, &l.ImageRef)
		if err != nil {
			return nil, fmt.Errorf("failed to scan log: %w", err)
		}
		if l.CreatedAt, err = parseTime(createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		if l.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}
		l.FoodComponents = []models.FoodComponent{}

		index[l.ID] = len(logs)
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read logs: %w", err)
	}

	if err := s.loadComponents(ctx, logs, index); err != nil {
		return nil, err
	}
	return logs, nil
}

func (s *SQLiteStorage) loadComponents(ctx context.Context, logs []models.FoodLog, index map[string]int) error {
	query := `
        SELECT log_id, name, amount, unit, recommended_amount, recommended_unit, needs_refinement
        FROM food_components
        ORDER BY log_id, position
    `
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query components: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var logID, unit string
		var c models.FoodComponent
		var recAmount *float64
		var recUnit *string

		if err := rows.Scan(&logID, &c.Name, &c.Amount, &unit, &recAmount, &recUnit, &c.NeedsRefinement); err != nil {
			return fmt.Errorf("failed to scan component: %w", err)
		}
		c.Unit = models.Unit(unit)
		if recAmount != nil {
			m := models.Measurement{Amount: *recAmount, Unit: c.Unit}
			if recUnit != nil {
				m.Unit = models.Unit(*recUnit)
			}
			c.RecommendedMeasurement = &m
		}

		i, ok := index[logID]
		if !ok {
			continue
		}
		logs[i].FoodComponents = append(logs[i].FoodComponents, c)
	}
	return rows.Err()
}

func (s *SQLiteStorage) loadFavorites(ctx context.Context) ([]models.Favorite, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, created_at, title, description, calories, protein, carbs, fat, estimation_confidence
        FROM favorites
        ORDER BY created_at, id
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer rows.Close()

	var favs []models.Favorite
	for rows.Next() {
		var f models.Favorite
		var createdAtStr string
		err := rows.Scan(&f.ID, &createdAtStr, &f.Title, &f.Description,
			&f.Macros.Calories, &f.Macros.Protein, &f.Macros.Carbs, &f.Macros.Fat, &f.EstimationConfidence)
		if err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		if f.CreatedAt, err = parseTime(createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		favs = append(favs, f)
	}
	return favs, rows.Err()
}

func (s *SQLiteStorage) loadSettings(ctx context.Context) (*models.UserSettings, error) {
	var st models.UserSettings
	var sex, activity, goal string
	err := s.db.QueryRowContext(ctx, `
        SELECT sex, age, weight, height, activity_level, calorie_goal_type,
            protein_factor, fat_percentage, calorie_override
        FROM settings WHERE id = 1
    `).Scan(&sex, &st.Age, &st.Weight, &st.Height, &activity, &goal,
		&st.ProteinFactor, &st.FatPercentage, &st.CalorieOverride)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	st.Sex = models.Sex(sex)
	st.ActivityLevel = models.ActivityLevel(activity)
	st.CalorieGoalType = models.GoalType(goal)
	return &st, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// nullable maps a nil pointer to SQL NULL.
func nullable[T any](p *T) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
