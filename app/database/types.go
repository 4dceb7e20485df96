package database

import (
	"time"
)

// Cadence values accepted by the schedule configuration.
const (
	CadenceDaily      = "daily"
	CadenceEveryNDays = "every_n_days"
	CadenceWeekdays   = "weekdays"
)

// Publish sources recorded in history entries.
const (
	SourceManual    = "manual"
	SourceScheduled = "scheduled"
	SourceApproved  = "approved"
)

// Publish outcomes recorded in history entries.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// ScheduleConfig is the singleton schedule configuration. Field names follow
// the UI contract.
type ScheduleConfig struct {
	Enabled         bool   `json:"enabled"`
	Hour            int    `json:"hour"`
	Minute          int    `json:"minute"`
	Cadence         string `json:"cadence"`
	EveryNDays      int    `json:"every_n_days"`
	Weekdays        []int  `json:"weekdays"`
	FolderID        string `json:"folder_id"`
	Tone            string `json:"tone"`
	DefaultCaption  string `json:"default_caption"`
	RequireApproval bool   `json:"require_approval"`

	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultScheduleConfig is returned when no configuration has ever been saved.
func DefaultScheduleConfig() ScheduleConfig {
	return ScheduleConfig{
		Enabled:         false,
		Hour:            8,
		Minute:          0,
		Cadence:         CadenceDaily,
		EveryNDays:      1,
		Weekdays:        []int{0, 1, 2, 3, 4},
		FolderID:        "",
		Tone:            "engaging",
		DefaultCaption:  "Another day, another photo.",
		RequireApproval: true,
	}
}

// PendingPost is a publish attempt waiting for a human decision. FileName
// carries the display name for the single-photo case.
type PendingPost struct {
	ID        string    `json:"id"`
	FileIDs   []string  `json:"file_ids"`
	FileNames []string  `json:"file_names"`
	FileName  string    `json:"file_name"`
	Caption   string    `json:"caption"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryEntry is one immutable publish attempt record.
type HistoryEntry struct {
	ID        string    `json:"id"`
	FileIDs   []string  `json:"file_ids"`
	FileNames []string  `json:"file_names"`
	Caption   string    `json:"caption"`
	Source    string    `json:"source"`
	Status    string    `json:"status"`
	Error     string    `json:"error"`
	MediaID   string    `json:"media_id"`
	CreatedAt time.Time `json:"created_at"`
}
