package post

import (
	"context"
	"fmt"
	"time"

	"github.com/dkovalev/autoinstapost/app/caption"
	"github.com/dkovalev/autoinstapost/app/database"
	"github.com/dkovalev/autoinstapost/app/drive"
)

// upcomingPoolLimit caps how many eligible photos the status report surfaces.
const upcomingPoolLimit = 20

type Check struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

type ScheduleStatus struct {
	NextRun      *time.Time    `json:"next_run"`
	AllOK        bool          `json:"all_ok"`
	Checks       []Check       `json:"checks"`
	UpcomingPool []drive.Photo `json:"upcoming_pool"`
}

// StatusService runs the pre-flight check battery and derives the schedule
// status on demand. Reading status never mutates state.
type StatusService struct {
	schedule database.ScheduleRepository
	dedup    database.DedupRepository
	pending  database.PendingRepository
	folder   FolderSource
	target   MediaPublisher
	loc      *time.Location
}

func NewStatusService(schedule database.ScheduleRepository, dedup database.DedupRepository, pending database.PendingRepository, folder FolderSource, target MediaPublisher, loc *time.Location) *StatusService {
	return &StatusService{
		schedule: schedule,
		dedup:    dedup,
		pending:  pending,
		folder:   folder,
		target:   target,
		loc:      loc,
	}
}

// Status reports next_run only when the schedule is enabled and every check
// passes; a broken schedule must not promise a time it cannot meet.
func (s *StatusService) Status(ctx context.Context, now time.Time) (ScheduleStatus, error) {
	cfg, err := s.schedule.GetConfig()
	if err != nil {
		return ScheduleStatus{}, fmt.Errorf("failed to load schedule config: %w", err)
	}

	status := ScheduleStatus{UpcomingPool: []drive.Photo{}}
	addCheck := func(name string, ok bool, message string) {
		status.Checks = append(status.Checks, Check{Name: name, OK: ok, Message: message})
	}

	addCheck("schedule_enabled", cfg.Enabled, boolMessage(cfg.Enabled, "Schedule is enabled", "Schedule is disabled"))

	folderConfigured := cfg.FolderID != ""
	addCheck("folder_configured", folderConfigured, boolMessage(folderConfigured, "Folder is configured", "No folder configured"))

	var pool []drive.Photo
	if folderConfigured {
		photos, listErr := s.folder.ListPhotos(ctx, cfg.FolderID)
		if listErr != nil {
			addCheck("folder_reachable", false, fmt.Sprintf("Folder listing failed: %v", listErr))
			addCheck("fresh_photos", false, "Cannot evaluate photo pool")
		} else {
			addCheck("folder_reachable", true, fmt.Sprintf("Folder contains %d publishable photos", len(photos)))

			pool, err = s.eligiblePool(photos)
			if err != nil {
				return ScheduleStatus{}, err
			}
			addCheck("fresh_photos", len(pool) > 0,
				boolMessage(len(pool) > 0, fmt.Sprintf("%d fresh photos available", len(pool)), "No fresh photos available"))
		}
	} else {
		addCheck("folder_reachable", false, "No folder configured")
		addCheck("fresh_photos", false, "No folder configured")
	}

	toneOK := caption.KnownTone(cfg.Tone)
	addCheck("caption_tone", toneOK, boolMessage(toneOK, fmt.Sprintf("Tone '%s' is valid", cfg.Tone), fmt.Sprintf("Unknown tone '%s'", cfg.Tone)))

	creds := s.target.HasCredentials()
	addCheck("publishing_credentials", creds, boolMessage(creds, "Publishing credentials present", "Publishing credentials missing"))

	status.AllOK = true
	for _, check := range status.Checks {
		if !check.OK {
			status.AllOK = false
			break
		}
	}

	if len(pool) > upcomingPoolLimit {
		pool = pool[:upcomingPoolLimit]
	}
	if pool != nil {
		status.UpcomingPool = pool
	}

	if cfg.Enabled && status.AllOK {
		lastRunAt, err := s.schedule.GetLastRunAt()
		if err != nil {
			return ScheduleStatus{}, fmt.Errorf("failed to load last run time: %w", err)
		}
		status.NextRun = NextRun(cfg, now, lastRunAt, s.loc)
	}

	return status, nil
}

func (s *StatusService) eligiblePool(photos []drive.Photo) ([]drive.Photo, error) {
	marked, err := s.dedup.MarkedIDs()
	if err != nil {
		return nil, fmt.Errorf("failed to load posted photo ids: %w", err)
	}
	pendingPosts, err := s.pending.List()
	if err != nil {
		return nil, fmt.Errorf("failed to load pending posts: %w", err)
	}
	return EligiblePool(photos, marked, PendingFileIDs(pendingPosts)), nil
}

func boolMessage(ok bool, okMsg, failMsg string) string {
	if ok {
		return okMsg
	}
	return failMsg
}
