package post

import (
	"context"

	"github.com/dkovalev/autoinstapost/app/drive"
)

// FolderSource lists photos from the external photo folder. Satisfied by the
// drive client.
type FolderSource interface {
	ListPhotos(ctx context.Context, folderID string) ([]drive.Photo, error)
	GetFolderInfo(ctx context.Context, folderID string) (*drive.FolderInfo, error)
}

// CaptionGenerator produces a caption for a photo set in the given tone.
// Satisfied by the caption client.
type CaptionGenerator interface {
	Generate(ctx context.Context, photoIDs []string, tone string) (string, error)
}

// MediaPublisher posts an ordered photo set to the publishing target.
// Satisfied by the instagram client.
type MediaPublisher interface {
	Publish(ctx context.Context, photoIDs []string, caption string) (string, error)
	HasCredentials() bool
}
