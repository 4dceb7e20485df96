package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

var _ ScheduleRepository = (*ScheduleRepositoryImpl)(nil)

// ScheduleRepositoryImpl persists the singleton schedule configuration and
// the scheduler's last-run anchor.
type ScheduleRepositoryImpl struct {
	db *DB
}

func NewScheduleRepository(db *DB) *ScheduleRepositoryImpl {
	return &ScheduleRepositoryImpl{db: db}
}

// GetConfig returns the saved configuration, or defaults when nothing has
// ever been saved.
func (r *ScheduleRepositoryImpl) GetConfig() (ScheduleConfig, error) {
	var (
		cfg       ScheduleConfig
		weekdays  string
		updatedAt string
	)

	err := r.db.QueryRow(`
		SELECT enabled, hour, minute, cadence, every_n_days, weekdays,
		       folder_id, tone, default_caption, require_approval,
		       version, updated_at
		FROM schedule_config
		WHERE id = 1
	`).Scan(
		&cfg.Enabled, &cfg.Hour, &cfg.Minute, &cfg.Cadence, &cfg.EveryNDays,
		&weekdays, &cfg.FolderID, &cfg.Tone, &cfg.DefaultCaption,
		&cfg.RequireApproval, &cfg.Version, &updatedAt,
	)

	if err == sql.ErrNoRows {
		return DefaultScheduleConfig(), nil
	}
	if err != nil {
		return ScheduleConfig{}, fmt.Errorf("failed to get schedule config: %w", err)
	}

	if err := json.Unmarshal([]byte(weekdays), &cfg.Weekdays); err != nil {
		return ScheduleConfig{}, fmt.Errorf("failed to decode weekdays: %w", err)
	}
	if cfg.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return ScheduleConfig{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return cfg, nil
}

// SaveConfig replaces the singleton configuration in a single statement, so
// concurrent readers observe either the previous or the new row, never a mix.
// The stored version counter is incremented on every save.
func (r *ScheduleRepositoryImpl) SaveConfig(cfg ScheduleConfig) (ScheduleConfig, error) {
	weekdays, err := json.Marshal(cfg.Weekdays)
	if err != nil {
		return ScheduleConfig{}, fmt.Errorf("failed to encode weekdays: %w", err)
	}

	now := time.Now().UTC()

	err = r.db.QueryRow(`
		INSERT INTO schedule_config (
			id, enabled, hour, minute, cadence, every_n_days, weekdays,
			folder_id, tone, default_caption, require_approval, version, updated_at
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?)
		ON CONFLICT (id) DO UPDATE SET
			enabled = excluded.enabled,
			hour = excluded.hour,
			minute = excluded.minute,
			cadence = excluded.cadence,
			every_n_days = excluded.every_n_days,
			weekdays = excluded.weekdays,
			folder_id = excluded.folder_id,
			tone = excluded.tone,
			default_caption = excluded.default_caption,
			require_approval = excluded.require_approval,
			version = schedule_config.version + 1,
			updated_at = excluded.updated_at
		RETURNING version
	`, cfg.Enabled, cfg.Hour, cfg.Minute, cfg.Cadence, cfg.EveryNDays,
		string(weekdays), cfg.FolderID, cfg.Tone, cfg.DefaultCaption,
		cfg.RequireApproval, formatTime(now)).Scan(&cfg.Version)

	if err != nil {
		return ScheduleConfig{}, fmt.Errorf("failed to save schedule config: %w", err)
	}

	cfg.UpdatedAt = now
	return cfg, nil
}

// GetLastRunAt returns when the scheduler last fired, or nil when it never has.
func (r *ScheduleRepositoryImpl) GetLastRunAt() (*time.Time, error) {
	var raw sql.NullString

	err := r.db.QueryRow(`SELECT last_run_at FROM schedule_state WHERE id = 1`).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last run time: %w", err)
	}
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}

	t, err := parseTime(raw.String)
	if err != nil {
		return nil, fmt.Errorf("failed to parse last run time: %w", err)
	}
	return &t, nil
}

func (r *ScheduleRepositoryImpl) SetLastRunAt(t time.Time) error {
	_, err := r.db.Exec(`
		INSERT INTO schedule_state (id, last_run_at) VALUES (1, ?)
		ON CONFLICT (id) DO UPDATE SET last_run_at = excluded.last_run_at
	`, formatTime(t.UTC()))

	if err != nil {
		return fmt.Errorf("failed to set last run time: %w", err)
	}
	return nil
}

// Fixed-width layout so stored timestamps sort lexicographically in SQL.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
