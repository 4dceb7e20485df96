package api

import (
	"context"

	"github.com/dkovalev/autoinstapost/app/database"
	"github.com/dkovalev/autoinstapost/app/drive"
	"github.com/dkovalev/autoinstapost/app/post"
	"github.com/dkovalev/autoinstapost/app/tasks"
)

// DriveInterface is the folder source surface the handlers need: listing for
// the picker, folder info, and raw bytes for the photo proxy.
type DriveInterface interface {
	ListPhotos(ctx context.Context, folderID string) ([]drive.Photo, error)
	GetFolderInfo(ctx context.Context, folderID string) (*drive.FolderInfo, error)
	RawBytes(ctx context.Context, photoID string) ([]byte, string, error)
}

var _ DriveInterface = (*drive.Client)(nil)

type Handler struct {
	scheduleRepo database.ScheduleRepository
	dedupRepo    database.DedupRepository
	historyRepo  database.HistoryRepository
	drive        DriveInterface
	publisher    *post.Publisher
	approval     *post.ApprovalService
	status       *post.StatusService
	scheduler    tasks.SchedulerInterface
}
