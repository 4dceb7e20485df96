package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dkovalev/autoinstapost/app/database"
	"github.com/dkovalev/autoinstapost/app/post"
	"github.com/dkovalev/autoinstapost/app/tasks"
)

func NewHandler(scheduleRepo database.ScheduleRepository, dedupRepo database.DedupRepository,
	historyRepo database.HistoryRepository, driveClient DriveInterface, publisher *post.Publisher,
	approval *post.ApprovalService, status *post.StatusService, scheduler tasks.SchedulerInterface) *Handler {
	return &Handler{
		scheduleRepo: scheduleRepo,
		dedupRepo:    dedupRepo,
		historyRepo:  historyRepo,
		drive:        driveClient,
		publisher:    publisher,
		approval:     approval,
		status:       status,
		scheduler:    scheduler,
	}
}

// respondError maps the error taxonomy onto HTTP statuses: validation 400,
// missing 404, decision races 409, collaborator failures 502.
func respondError(c *gin.Context, err error) {
	var validationErr *post.ValidationError
	var upstreamErr *post.UpstreamError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": validationErr.Fields})
	case errors.Is(err, post.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, post.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Conflict"})
	case errors.As(err, &upstreamErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": upstreamErr.Error()})
	default:
		slog.Error("Internal error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := gin.H{
		"status":    "ok",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if pending, err := h.approval.List(); err == nil {
		health["pending"] = len(pending)
	}
	if count, err := h.historyRepo.Count(); err == nil {
		health["history"] = count
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetScheduleConfig(c *gin.Context) {
	config, err := h.scheduleRepo.GetConfig()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, config)
}

func (h *Handler) SaveScheduleConfig(c *gin.Context) {
	var candidate database.ScheduleConfig
	if err := c.ShouldBindJSON(&candidate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := post.ValidateConfig(candidate); err != nil {
		respondError(c, err)
		return
	}

	saved, err := h.scheduleRepo.SaveConfig(candidate)
	if err != nil {
		respondError(c, err)
		return
	}

	slog.Info("Schedule config saved", "version", saved.Version, "enabled", saved.Enabled, "cadence", saved.Cadence)
	c.JSON(http.StatusOK, saved)
}

func (h *Handler) GetTimezone(c *gin.Context) {
	now := time.Now().In(time.Local)
	c.JSON(http.StatusOK, gin.H{
		"timezone":     time.Local.String(),
		"utc_offset":   now.Format("-07:00"),
		"current_time": now.Format(time.RFC3339),
	})
}

func (h *Handler) GetPostedIDs(c *gin.Context) {
	ids, err := h.dedupRepo.MarkedIDs()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posted_ids": ids, "total": len(ids)})
}

func (h *Handler) MarkPosted(c *gin.Context) {
	id := c.Param("id")
	if err := h.dedupRepo.Mark(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "marked": true})
}

func (h *Handler) UnmarkPosted(c *gin.Context) {
	id := c.Param("id")
	if err := h.dedupRepo.Unmark(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "marked": false})
}

func (h *Handler) ListPending(c *gin.Context) {
	pending, err := h.approval.List()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending": pending, "total": len(pending)})
}

func (h *Handler) ApprovePending(c *gin.Context) {
	entry, err := h.approval.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		var upstreamErr *post.UpstreamError
		if errors.As(err, &upstreamErr) {
			// the entry was consumed and the failure recorded; surface both
			c.JSON(http.StatusBadGateway, gin.H{"error": upstreamErr.Error(), "entry": entry})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *Handler) RejectPending(c *gin.Context) {
	id := c.Param("id")
	if err := h.approval.Reject(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "rejected": true})
}

func (h *Handler) GetHistory(c *gin.Context) {
	entries, err := h.historyRepo.List()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": entries, "total": len(entries)})
}

func (h *Handler) GetStatus(c *gin.Context) {
	status, err := h.status.Status(c.Request.Context(), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *Handler) RunNow(c *gin.Context) {
	if err := h.scheduler.RunNow(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) ListDrivePhotos(c *gin.Context) {
	folderID := c.Query("folder_id")
	if folderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing folder_id parameter"})
		return
	}

	photos, err := h.drive.ListPhotos(c.Request.Context(), folderID)
	if err != nil {
		respondError(c, &post.UpstreamError{Service: "drive", Err: err})
		return
	}
	c.JSON(http.StatusOK, gin.H{"photos": photos, "total": len(photos)})
}

func (h *Handler) GetDriveFolder(c *gin.Context) {
	folderID := c.Query("folder_id")
	if folderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing folder_id parameter"})
		return
	}

	folder, err := h.drive.GetFolderInfo(c.Request.Context(), folderID)
	if err != nil {
		respondError(c, &post.UpstreamError{Service: "drive", Err: err})
		return
	}
	c.JSON(http.StatusOK, folder)
}

// GetDrivePhotoRaw proxies photo bytes so the publishing target and the UI
// preview can fetch them without folder credentials.
func (h *Handler) GetDrivePhotoRaw(c *gin.Context) {
	data, contentType, err := h.drive.RawBytes(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, &post.UpstreamError{Service: "drive", Err: err})
		return
	}
	c.Data(http.StatusOK, contentType, data)
}

type publishRequest struct {
	FileIDs []string `json:"file_ids"`
	Caption string   `json:"caption"`
}

func (h *Handler) ManualPost(c *gin.Context) {
	var req publishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	entry, err := h.publisher.Publish(c.Request.Context(), req.FileIDs, nil, req.Caption, database.SourceManual)
	if err != nil {
		var upstreamErr *post.UpstreamError
		if errors.As(err, &upstreamErr) {
			c.JSON(http.StatusBadGateway, gin.H{"error": upstreamErr.Error(), "entry": entry})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *Handler) ManualQueue(c *gin.Context) {
	var req publishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	pending, err := h.approval.Enqueue(req.FileIDs, nil, req.Caption)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pending)
}
