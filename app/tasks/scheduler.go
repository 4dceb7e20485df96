package tasks

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/dkovalev/autoinstapost/app/cfg"
	"github.com/dkovalev/autoinstapost/app/database"
	"github.com/dkovalev/autoinstapost/app/post"
)

var _ SchedulerInterface = (*Scheduler)(nil)

// Scheduler drives scheduled publishing on a single ticker goroutine. Each
// tick recomputes the next run from freshly loaded config, so a config save
// between ticks is picked up without restart; the job executes inline in the
// loop goroutine, so only one run is ever in flight.
type Scheduler struct {
	scheduleRepo database.ScheduleRepository
	dedupRepo    database.DedupRepository
	pendingRepo  database.PendingRepository
	folder       post.FolderSource
	captioner    post.CaptionGenerator
	publisher    *post.Publisher
	approval     *post.ApprovalService
	loc          *time.Location
	interval     time.Duration
	rng          *rand.Rand
	lastTick     time.Time
	runMu        sync.Mutex
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

func NewScheduler(scheduleRepo database.ScheduleRepository, dedupRepo database.DedupRepository,
	pendingRepo database.PendingRepository, folder post.FolderSource, captioner post.CaptionGenerator,
	publisher *post.Publisher, approval *post.ApprovalService) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		scheduleRepo: scheduleRepo,
		dedupRepo:    dedupRepo,
		pendingRepo:  pendingRepo,
		folder:       folder,
		captioner:    captioner,
		publisher:    publisher,
		approval:     approval,
		loc:          cfg.Location(),
		interval:     time.Duration(cfg.SchedulerInterval) * time.Second,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		ctx:          ctx,
		cancel:       cancel,
	}
}

func (s *Scheduler) Start() {
	s.lastTick = time.Now()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.tick(time.Now())
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

// tick fires the job when a run slot passed since the previous tick. The slot
// is recomputed from current config and persisted last run time, never from a
// value armed earlier.
func (s *Scheduler) tick(now time.Time) {
	prev := s.lastTick
	s.lastTick = now

	config, err := s.scheduleRepo.GetConfig()
	if err != nil {
		slog.Error("Failed to load schedule config", "error", err)
		return
	}

	lastRunAt, err := s.scheduleRepo.GetLastRunAt()
	if err != nil {
		slog.Error("Failed to load last run time", "error", err)
		return
	}

	target := post.NextRun(config, prev, lastRunAt, s.loc)
	if target == nil || target.After(now) {
		return
	}

	slog.Info("Scheduled run due", "target", target.Format(time.RFC3339))

	// Advance the cadence anchor before running; a failed or skipped run
	// must not re-fire on every subsequent tick.
	if err := s.scheduleRepo.SetLastRunAt(now); err != nil {
		slog.Error("Failed to persist last run time", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	if err := s.runJob(ctx, config); err != nil {
		slog.Error("Scheduled run failed", "error", err)
	}
}

// RunNow executes the scheduled job immediately, out of cadence. The cadence
// anchor is left untouched so the regular schedule is unaffected.
func (s *Scheduler) RunNow(ctx context.Context) error {
	config, err := s.scheduleRepo.GetConfig()
	if err != nil {
		return err
	}

	slog.Info("Manual run triggered")
	return s.runJob(ctx, config)
}

// runJob is one publishing cycle: list, select, caption, then publish or
// enqueue for approval. Skips (empty folder, exhausted pool) are logged and
// reported through the status checks, not treated as errors.
func (s *Scheduler) runJob(ctx context.Context, config database.ScheduleConfig) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if config.FolderID == "" {
		slog.Warn("Skipping run, no folder configured")
		return nil
	}

	photos, err := s.folder.ListPhotos(ctx, config.FolderID)
	if err != nil {
		return &post.UpstreamError{Service: "drive", Err: err}
	}

	marked, err := s.dedupRepo.MarkedIDs()
	if err != nil {
		return err
	}
	pendingPosts, err := s.pendingRepo.List()
	if err != nil {
		return err
	}

	selected := post.SelectCandidates(photos, marked, post.PendingFileIDs(pendingPosts), post.DefaultPickCount, s.rng)
	if len(selected) == 0 {
		slog.Warn("Skipping run, no fresh photos available", "folder", config.FolderID, "total", len(photos))
		return nil
	}

	fileIDs := make([]string, 0, len(selected))
	fileNames := make([]string, 0, len(selected))
	for _, photo := range selected {
		fileIDs = append(fileIDs, photo.ID)
		fileNames = append(fileNames, photo.Name)
	}

	caption, err := s.captioner.Generate(ctx, fileIDs, config.Tone)
	if err != nil {
		slog.Warn("Caption generation failed, using default caption", "error", err)
		caption = config.DefaultCaption
	}

	if config.RequireApproval {
		pending, err := s.approval.Enqueue(fileIDs, fileNames, caption)
		if err != nil {
			return err
		}
		slog.Info("Run queued for approval", "pending_id", pending.ID, "photos", len(fileIDs))
		return nil
	}

	entry, err := s.publisher.Publish(ctx, fileIDs, fileNames, caption, database.SourceScheduled)
	if err != nil {
		// the failure is already recorded in history
		return err
	}

	slog.Info("Scheduled run published", "media_id", entry.MediaID, "photos", len(fileIDs))
	return nil
}
