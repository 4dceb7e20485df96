package database

import (
	"time"
)

type ScheduleRepository interface {
	GetConfig() (ScheduleConfig, error)
	SaveConfig(cfg ScheduleConfig) (ScheduleConfig, error)

	GetLastRunAt() (*time.Time, error)
	SetLastRunAt(t time.Time) error
}

type DedupRepository interface {
	IsMarked(photoID string) (bool, error)
	Mark(photoID string) error
	Unmark(photoID string) error
	MarkedIDs() ([]string, error)
}

type PendingRepository interface {
	Add(post PendingPost) error
	List() ([]PendingPost, error)

	// Take atomically claims and removes the pending post with the given id.
	// Returns nil when no such post exists (already decided or never created).
	Take(id string) (*PendingPost, error)

	// Delete removes a pending post without claiming it. Returns false when
	// the post does not exist.
	Delete(id string) (bool, error)
}

type HistoryRepository interface {
	Append(entry HistoryEntry) error
	List() ([]HistoryEntry, error)
	Count() (int, error)
}
