package post

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dkovalev/autoinstapost/app/database"
)

// Publisher executes publish attempts. Every attempt that passes validation
// produces exactly one history entry, success or failure; dedup marks are
// written only on success so a failed attempt can be retried with the same
// photos.
type Publisher struct {
	dedup   database.DedupRepository
	history database.HistoryRepository
	target  MediaPublisher

	// Serializes dedup and history writes between the scheduler, approval
	// decisions, and manual posts.
	mu sync.Mutex
}

func NewPublisher(dedup database.DedupRepository, history database.HistoryRepository, target MediaPublisher) *Publisher {
	return &Publisher{
		dedup:   dedup,
		history: history,
		target:  target,
	}
}

// Publish posts fileIDs with the caption and records the outcome. fileNames
// is display metadata and may be empty. The returned entry is valid on both
// outcomes; on failure the error is returned alongside it so callers can
// surface it. There is no automatic retry.
func (p *Publisher) Publish(ctx context.Context, fileIDs, fileNames []string, caption, source string) (database.HistoryEntry, error) {
	if err := validateAttempt(fileIDs, caption); err != nil {
		return database.HistoryEntry{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	entry := database.HistoryEntry{
		ID:        uuid.NewString(),
		FileIDs:   fileIDs,
		FileNames: fileNames,
		Caption:   caption,
		Source:    source,
		CreatedAt: time.Now(),
	}

	mediaID, err := p.target.Publish(ctx, fileIDs, caption)
	if err != nil {
		entry.Status = database.StatusFailure
		entry.Error = err.Error()
		if appendErr := p.history.Append(entry); appendErr != nil {
			return entry, fmt.Errorf("failed to record publish failure: %w", appendErr)
		}
		slog.Warn("Publish failed", "source", source, "photos", len(fileIDs), "error", err)
		return entry, &UpstreamError{Service: "instagram", Err: err}
	}

	entry.Status = database.StatusSuccess
	entry.MediaID = mediaID

	for _, id := range fileIDs {
		if err := p.dedup.Mark(id); err != nil {
			return entry, fmt.Errorf("failed to mark photo %s as posted: %w", id, err)
		}
	}
	if err := p.history.Append(entry); err != nil {
		return entry, fmt.Errorf("failed to record publish success: %w", err)
	}

	slog.Info("Published post", "source", source, "photos", len(fileIDs), "media_id", mediaID)
	return entry, nil
}

func validateAttempt(fileIDs []string, caption string) error {
	if len(fileIDs) == 0 {
		return newValidationError("file_ids", "at least one photo is required")
	}
	if len(fileIDs) > MaxCarouselPhotos {
		return newValidationError("file_ids", fmt.Sprintf("at most %d photos per post", MaxCarouselPhotos))
	}
	if strings.TrimSpace(caption) == "" {
		return newValidationError("caption", "cannot be empty")
	}
	return nil
}
