package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/privacypulse/pulse-server/internal/model"
)

type registerRequest struct {
	Handle      string `json:"handle" binding:"required"`
	DisplayName string `json:"display_name"`
}

type profileResponse struct {
	AccountID   string    `json:"account_id"`
	Handle      string    `json:"handle"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

type recordViewRequest struct {
	SubjectAccountID string `json:"subject_account_id" binding:"required"`
}

type feedEntryResponse struct {
	ActorHandle string    `json:"actor_handle"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func (s *Server) handleHealth(c *gin.Context) {
	ctx := c.Request.Context()

	if err := s.db.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
		return
	}
	if err := s.cache.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "redis": "unreachable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "handle is required"})
		return
	}

	profile, err := s.directory.Register(c.Request.Context(), accountID(c), req.Handle, req.DisplayName)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toProfileResponse(profile))
}

func (s *Server) handleProfile(c *gin.Context) {
	profile, err := s.directory.Profile(c.Request.Context(), accountID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toProfileResponse(profile))
}

func (s *Server) handleSearch(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	profiles, err := s.directory.Search(c.Request.Context(), accountID(c), c.Query("q"), limit, offset)
	if err != nil {
		s.writeError(c, err)
		return
	}

	results := make([]profileResponse, 0, len(profiles))
	for _, p := range profiles {
		results = append(results, toProfileResponse(p))
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (s *Server) handleRecordView(c *gin.Context) {
	var req recordViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subject_account_id is required"})
		return
	}

	subjectID, err := uuid.Parse(req.SubjectAccountID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subject_account_id is not a valid id"})
		return
	}

	event, err := s.view.RecordView(c.Request.Context(), accountID(c), subjectID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":          event.ID,
		"occurred_at": event.OccurredAt,
	})
}

func (s *Server) handleFeed(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	entries, err := s.view.Refresh(c.Request.Context(), accountID(c), limit)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": toFeedResponse(entries)})
}

func (s *Server) handleErase(c *gin.Context) {
	result, err := s.erasure.Erase(c.Request.Context(), accountID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events_deleted":  result.EventsDeleted,
		"profile_deleted": result.ProfileDeleted,
	})
}

func (s *Server) handleExport(c *gin.Context) {
	key, err := s.export.ExportHistory(c.Request.Context(), accountID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"key": key})
}

func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrHandleInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "handle is invalid"})
	case errors.Is(err, model.ErrHandleTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "handle already taken"})
	case errors.Is(err, model.ErrAccountAlreadyLinked):
		c.JSON(http.StatusConflict, gin.H{"error": "account already linked to a profile"})
	case errors.Is(err, model.ErrSelfView):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "self view is not recorded"})
	case errors.Is(err, model.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, model.ErrErasureInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "erasure already in progress"})
	case errors.Is(err, model.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
	default:
		s.log.Error("request failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func toProfileResponse(p model.Profile) profileResponse {
	return profileResponse{
		AccountID:   p.AccountID.String(),
		Handle:      p.Handle,
		DisplayName: p.DisplayName,
		CreatedAt:   p.CreatedAt,
	}
}

func toFeedResponse(entries []model.FeedEntry) []feedEntryResponse {
	out := make([]feedEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, feedEntryResponse{ActorHandle: e.ActorHandle, OccurredAt: e.OccurredAt})
	}
	return out
}
