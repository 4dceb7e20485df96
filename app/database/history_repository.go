package database

import (
	"encoding/json"
	"fmt"
)

var _ HistoryRepository = (*HistoryRepositoryImpl)(nil)

// HistoryRepositoryImpl is the append-only publish attempt ledger. There is
// no update or delete path.
type HistoryRepositoryImpl struct {
	db *DB
}

func NewHistoryRepository(db *DB) *HistoryRepositoryImpl {
	return &HistoryRepositoryImpl{db: db}
}

func (r *HistoryRepositoryImpl) Append(entry HistoryEntry) error {
	fileIDs, err := json.Marshal(entry.FileIDs)
	if err != nil {
		return fmt.Errorf("failed to encode file ids: %w", err)
	}
	fileNames, err := json.Marshal(entry.FileNames)
	if err != nil {
		return fmt.Errorf("failed to encode file names: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO post_history (id, file_ids, file_names, caption, source, status, error, media_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, string(fileIDs), string(fileNames), entry.Caption, entry.Source,
		entry.Status, entry.Error, entry.MediaID, formatTime(entry.CreatedAt.UTC()))

	if err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}
	return nil
}

// List returns all history entries, most recent first.
func (r *HistoryRepositoryImpl) List() ([]HistoryEntry, error) {
	rows, err := r.db.Query(`
		SELECT id, file_ids, file_names, caption, source, status, error, media_id, created_at
		FROM post_history
		ORDER BY created_at DESC, rowid DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	entries := []HistoryEntry{}
	for rows.Next() {
		var (
			entry     HistoryEntry
			fileIDs   string
			fileNames string
			createdAt string
		)
		err := rows.Scan(&entry.ID, &fileIDs, &fileNames, &entry.Caption,
			&entry.Source, &entry.Status, &entry.Error, &entry.MediaID, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}

		if err := json.Unmarshal([]byte(fileIDs), &entry.FileIDs); err != nil {
			return nil, fmt.Errorf("failed to decode file ids: %w", err)
		}
		if err := json.Unmarshal([]byte(fileNames), &entry.FileNames); err != nil {
			return nil, fmt.Errorf("failed to decode file names: %w", err)
		}
		if entry.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history rows: %w", err)
	}

	return entries, nil
}

func (r *HistoryRepositoryImpl) Count() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM post_history`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count history entries: %w", err)
	}
	return count, nil
}
