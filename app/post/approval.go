package post

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dkovalev/autoinstapost/app/database"
)

// ApprovalService holds posts back until a human decides. A pending post is
// never edited in place; reject-and-recreate is the only revision path.
type ApprovalService struct {
	pending   database.PendingRepository
	publisher *Publisher
}

func NewApprovalService(pending database.PendingRepository, publisher *Publisher) *ApprovalService {
	return &ApprovalService{
		pending:   pending,
		publisher: publisher,
	}
}

// Enqueue creates a pending post awaiting decision. A photo that is already
// part of a queued post cannot be queued again; the later attempt gets
// ErrConflict so two overlapping queue decisions cannot both publish it.
func (s *ApprovalService) Enqueue(fileIDs, fileNames []string, caption string) (database.PendingPost, error) {
	if err := validateAttempt(fileIDs, caption); err != nil {
		return database.PendingPost{}, err
	}

	queued, err := s.pending.List()
	if err != nil {
		return database.PendingPost{}, fmt.Errorf("failed to list pending posts: %w", err)
	}
	inQueue := make(map[string]bool)
	for _, id := range PendingFileIDs(queued) {
		inQueue[id] = true
	}
	for _, id := range fileIDs {
		if inQueue[id] {
			return database.PendingPost{}, fmt.Errorf("photo %s is already queued: %w", id, ErrConflict)
		}
	}

	pending := database.PendingPost{
		ID:        uuid.NewString(),
		FileIDs:   fileIDs,
		FileNames: fileNames,
		Caption:   caption,
		CreatedAt: time.Now(),
	}
	if len(fileNames) == 1 {
		pending.FileName = fileNames[0]
	}

	if err := s.pending.Add(pending); err != nil {
		return database.PendingPost{}, fmt.Errorf("failed to enqueue pending post: %w", err)
	}

	slog.Info("Enqueued pending post", "id", pending.ID, "photos", len(fileIDs))
	return pending, nil
}

func (s *ApprovalService) List() ([]database.PendingPost, error) {
	return s.pending.List()
}

// Approve claims the pending entry and publishes it. The entry is consumed on
// success and failure alike; both outcomes land in history with
// source=approved. The loser of a concurrent approve/reject race gets
// ErrNotFound because the entry is already gone.
func (s *ApprovalService) Approve(ctx context.Context, id string) (database.HistoryEntry, error) {
	pending, err := s.pending.Take(id)
	if err != nil {
		return database.HistoryEntry{}, fmt.Errorf("failed to claim pending post %s: %w", id, err)
	}
	if pending == nil {
		return database.HistoryEntry{}, ErrNotFound
	}

	return s.publisher.Publish(ctx, pending.FileIDs, pending.FileNames, pending.Caption, database.SourceApproved)
}

// Reject removes the pending entry. No publish, no history.
func (s *ApprovalService) Reject(id string) error {
	deleted, err := s.pending.Delete(id)
	if err != nil {
		return fmt.Errorf("failed to reject pending post %s: %w", id, err)
	}
	if !deleted {
		return ErrNotFound
	}

	slog.Info("Rejected pending post", "id", id)
	return nil
}
