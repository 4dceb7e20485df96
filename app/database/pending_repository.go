package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

var _ PendingRepository = (*PendingRepositoryImpl)(nil)

// PendingRepositoryImpl stores posts awaiting a human approve/reject decision.
type PendingRepositoryImpl struct {
	db *DB
}

func NewPendingRepository(db *DB) *PendingRepositoryImpl {
	return &PendingRepositoryImpl{db: db}
}

func (r *PendingRepositoryImpl) Add(post PendingPost) error {
	fileIDs, err := json.Marshal(post.FileIDs)
	if err != nil {
		return fmt.Errorf("failed to encode file ids: %w", err)
	}
	fileNames, err := json.Marshal(post.FileNames)
	if err != nil {
		return fmt.Errorf("failed to encode file names: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO pending_posts (id, file_ids, file_names, caption, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, post.ID, string(fileIDs), string(fileNames), post.Caption, formatTime(post.CreatedAt.UTC()))

	if err != nil {
		return fmt.Errorf("failed to add pending post: %w", err)
	}
	return nil
}

func (r *PendingRepositoryImpl) List() ([]PendingPost, error) {
	rows, err := r.db.Query(`
		SELECT id, file_ids, file_names, caption, created_at
		FROM pending_posts
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending posts: %w", err)
	}
	defer rows.Close()

	posts := []PendingPost{}
	for rows.Next() {
		post, err := scanPendingPost(rows.Scan)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pending post rows: %w", err)
	}

	return posts, nil
}

// Take claims and removes the pending post in one transaction. Exactly one of
// two racing decision calls observes the row; the other gets nil.
func (r *PendingRepositoryImpl) Take(id string) (*PendingPost, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	post, err := scanPendingPost(tx.QueryRow(`
		SELECT id, file_ids, file_names, caption, created_at
		FROM pending_posts
		WHERE id = ?
	`, id).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	res, err := tx.Exec(`DELETE FROM pending_posts WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete pending post: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit pending post claim: %w", err)
	}

	return &post, nil
}

func (r *PendingRepositoryImpl) Delete(id string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM pending_posts WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete pending post: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

func scanPendingPost(scan func(dest ...any) error) (PendingPost, error) {
	var (
		post      PendingPost
		fileIDs   string
		fileNames string
		createdAt string
	)

	err := scan(&post.ID, &fileIDs, &fileNames, &post.Caption, &createdAt)
	if err == sql.ErrNoRows {
		return PendingPost{}, err
	}
	if err != nil {
		return PendingPost{}, fmt.Errorf("failed to scan pending post row: %w", err)
	}

	if err := json.Unmarshal([]byte(fileIDs), &post.FileIDs); err != nil {
		return PendingPost{}, fmt.Errorf("failed to decode file ids: %w", err)
	}
	if err := json.Unmarshal([]byte(fileNames), &post.FileNames); err != nil {
		return PendingPost{}, fmt.Errorf("failed to decode file names: %w", err)
	}
	if post.CreatedAt, err = parseTime(createdAt); err != nil {
		return PendingPost{}, fmt.Errorf("failed to parse created_at: %w", err)
	}

	if len(post.FileNames) == 1 {
		post.FileName = post.FileNames[0]
	}

	return post, nil
}
