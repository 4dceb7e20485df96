package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ DedupRepository = (*DedupRepositoryImpl)(nil)

// DedupRepositoryImpl tracks photo ids that have already been published (or
// were manually marked). It is deliberately independent of post history, so
// a photo can be freed for reuse without touching audit records.
type DedupRepositoryImpl struct {
	db *DB
}

func NewDedupRepository(db *DB) *DedupRepositoryImpl {
	return &DedupRepositoryImpl{db: db}
}

func (r *DedupRepositoryImpl) IsMarked(photoID string) (bool, error) {
	var one int
	err := r.db.QueryRow(`SELECT 1 FROM posted_photos WHERE photo_id = ?`, photoID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check posted photo: %w", err)
	}
	return true, nil
}

// Mark records a photo as already shared. Marking a marked photo is a no-op.
func (r *DedupRepositoryImpl) Mark(photoID string) error {
	_, err := r.db.Exec(`
		INSERT INTO posted_photos (photo_id, marked_at) VALUES (?, ?)
		ON CONFLICT (photo_id) DO NOTHING
	`, photoID, formatTime(time.Now().UTC()))

	if err != nil {
		return fmt.Errorf("failed to mark photo as posted: %w", err)
	}
	return nil
}

// Unmark frees a photo for reuse. Unmarking an unmarked photo is a no-op.
func (r *DedupRepositoryImpl) Unmark(photoID string) error {
	_, err := r.db.Exec(`DELETE FROM posted_photos WHERE photo_id = ?`, photoID)
	if err != nil {
		return fmt.Errorf("failed to unmark posted photo: %w", err)
	}
	return nil
}

func (r *DedupRepositoryImpl) MarkedIDs() ([]string, error) {
	rows, err := r.db.Query(`SELECT photo_id FROM posted_photos ORDER BY photo_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list posted photos: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan posted photo row: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posted photo rows: %w", err)
	}

	return ids, nil
}
