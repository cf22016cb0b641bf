package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"maintenance-app/tracking-service/internal/models"
	"maintenance-app/tracking-service/internal/pipeline"
	"maintenance-app/tracking-service/internal/services"
	"maintenance-app/tracking-service/internal/utils"
)

const (
	dateLayout     = "2006-01-02"
	statsKeyPrefix = "stats"
)

type IssueHandler struct {
	service   *services.IssueService
	branchCtx *services.BranchContext
	rdb       *redis.Client
	log       *zap.Logger
}

func NewIssueHandler(service *services.IssueService, branchCtx *services.BranchContext, rdb *redis.Client, log *zap.Logger) *IssueHandler {
	return &IssueHandler{service: service, branchCtx: branchCtx, rdb: rdb, log: log}
}

// clearStatsCache invalidates the cached dashboard counters after writes.
func (h *IssueHandler) clearStatsCache(c *gin.Context, branchID string) {
	if err := utils.DeleteFromCache(c.Request.Context(), h.rdb, statsKeyPrefix+":"+branchID); err != nil {
		h.log.Warn("failed to invalidate stats cache", zap.String("branchId", branchID), zap.Error(err))
	}
}

// branchID resolves the branch for a request: explicit query param first,
// otherwise the session's persisted branch context.
func (h *IssueHandler) branchID(c *gin.Context) (string, error) {
	if branchID := c.Query("branchId"); branchID != "" {
		return branchID, nil
	}

	sessionID := c.GetString("user_id")
	branchID, err := h.branchCtx.CurrentBranch(c.Request.Context(), sessionID)
	if err != nil {
		return "", err
	}
	if branchID == "" {
		return "", fmt.Errorf("%w: no branch selected", models.ErrValidation)
	}

	return branchID, nil
}

func parseFilter(c *gin.Context) (pipeline.Filter, error) {
	filter := pipeline.Filter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
	}

	if from := c.Query("dateFrom"); from != "" {
		t, err := time.Parse(dateLayout, from)
		if err != nil {
			return filter, fmt.Errorf("%w: invalid dateFrom", models.ErrValidation)
		}
		filter.DateFrom = t
	}

	if to := c.Query("dateTo"); to != "" {
		t, err := time.Parse(dateLayout, to)
		if err != nil {
			return filter, fmt.Errorf("%w: invalid dateTo", models.ErrValidation)
		}
		filter.DateTo = t
	}

	return filter, nil
}

func parseSortDirection(c *gin.Context) pipeline.SortDirection {
	if c.DefaultQuery("sort", "desc") == "asc" {
		return pipeline.SortAsc
	}
	return pipeline.SortDesc
}

// ListIssues serves one filtered, sorted page of a branch's issues.
func (h *IssueHandler) ListIssues(c *gin.Context) {
	branchID, err := h.branchID(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	filter, err := parseFilter(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	result, err := h.service.List(c.Request.Context(), branchID, filter, parseSortDirection(c), page)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RefreshIssues forces a re-fetch of the branch cache from the store.
func (h *IssueHandler) RefreshIssues(c *gin.Context) {
	branchID, err := h.branchID(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	issues, err := h.service.Refresh(c.Request.Context(), branchID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(issues)})
}

// CreateIssue accepts a multipart form: the issue fields plus an optional
// photo. A failed photo upload never blocks the issue itself.
func (h *IssueHandler) CreateIssue(c *gin.Context) {
	issue := models.Issue{
		BranchID:    c.PostForm("branchId"),
		RoomNumber:  c.PostForm("roomNumber"),
		Location:    c.PostForm("location"),
		Category:    models.IssueCategory(c.PostForm("category")),
		Description: c.PostForm("description"),
		Priority:    models.IssuePriority(c.PostForm("priority")),
		AuthorName:  c.PostForm("authorName"),
		ReportedBy:  c.GetString("user_id"),
	}

	prefType := c.PostForm("timePreferenceType")
	if prefType == "" {
		prefType = string(models.TimeAnytime)
	}
	issue.TimePreference.Type = models.TimePreferenceType(prefType)
	if dt := c.PostForm("timePreferenceDatetime"); dt != "" {
		t, err := time.Parse(time.RFC3339, dt)
		if err != nil {
			abortWithError(c, fmt.Errorf("%w: invalid timePreferenceDatetime", models.ErrValidation))
			return
		}
		issue.TimePreference.Datetime = &t
	}

	var photo *services.PhotoUpload
	if file, err := c.FormFile("photo"); err == nil {
		src, err := file.Open()
		if err != nil {
			abortWithError(c, fmt.Errorf("%w: could not read photo: %v", models.ErrValidation, err))
			return
		}
		defer src.Close()

		photo = &services.PhotoUpload{
			Reader:      src,
			Size:        file.Size,
			ContentType: file.Header.Get("Content-Type"),
			Filename:    file.Filename,
		}
	}

	if err := h.service.CreateIssue(c.Request.Context(), &issue, photo); err != nil {
		abortWithError(c, err)
		return
	}

	h.clearStatsCache(c, issue.BranchID)
	c.JSON(http.StatusCreated, issue)
}

// GetIssue returns a single issue.
func (h *IssueHandler) GetIssue(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, models.ErrInvalidID)
		return
	}

	issue, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, issue)
}

// UpdateStatus applies one status transition.
func (h *IssueHandler) UpdateStatus(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, models.ErrInvalidID)
		return
	}

	var input models.StatusUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, fmt.Errorf("%w: %v", models.ErrValidation, err))
		return
	}

	issue, err := h.service.TransitionStatus(c.Request.Context(), id, input.Status)
	if err != nil {
		abortWithError(c, err)
		return
	}

	h.clearStatsCache(c, issue.BranchID)
	c.JSON(http.StatusOK, issue)
}

// AddComment appends one comment to an issue.
func (h *IssueHandler) AddComment(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, models.ErrInvalidID)
		return
	}

	var input struct {
		Text   string `json:"text"`
		Author string `json:"author"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, fmt.Errorf("%w: %v", models.ErrValidation, err))
		return
	}

	comment, err := h.service.AddComment(c.Request.Context(), id, input.Text, input.Author)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// ListComments returns an issue's comments, oldest first.
func (h *IssueHandler) ListComments(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, models.ErrInvalidID)
		return
	}

	comments, err := h.service.Comments(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, comments)
}

// DeleteIssue removes one issue.
func (h *IssueHandler) DeleteIssue(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, models.ErrInvalidID)
		return
	}

	if err := h.service.DeleteIssue(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Issue deleted successfully"})
}

// DeleteAllIssues bulk-deletes every issue of a branch.
func (h *IssueHandler) DeleteAllIssues(c *gin.Context) {
	branchID, err := h.branchID(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	deleted, err := h.service.DeleteAllIssues(c.Request.Context(), branchID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	h.clearStatsCache(c, branchID)
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// Stats serves dashboard counters, cached in redis for a short TTL.
func (h *IssueHandler) Stats(c *gin.Context) {
	branchID, err := h.branchID(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	key := statsKeyPrefix + ":" + branchID
	if cached, err := utils.GetFromCache(c.Request.Context(), h.rdb, key); err == nil {
		var stats models.BranchStats
		if err := json.Unmarshal([]byte(cached), &stats); err == nil {
			c.JSON(http.StatusOK, stats)
			return
		}
	}

	stats, err := h.service.Stats(c.Request.Context(), branchID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	if payload, err := json.Marshal(stats); err == nil {
		if err := utils.SetToCache(c.Request.Context(), h.rdb, key, string(payload), utils.RedisCacheDuration); err != nil {
			h.log.Warn("failed to cache stats", zap.String("branchId", branchID), zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, stats)
}

// ExportIssues streams the filtered issue list as CSV or as an Excel
// workbook, in the same order the tracking page shows.
func (h *IssueHandler) ExportIssues(c *gin.Context) {
	branchID, err := h.branchID(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	filter, err := parseFilter(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	issues, err := h.service.FilteredIssues(c.Request.Context(), branchID, filter, parseSortDirection(c))
	if err != nil {
		abortWithError(c, err)
		return
	}

	filename := fmt.Sprintf("issues_%s_%s", branchID, time.Now().Format(dateLayout))

	switch c.DefaultQuery("format", "csv") {
	case "xlsx":
		payload, err := services.IssuesWorkbook(issues)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+filename+`.xlsx"`)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", payload)
	case "csv":
		payload, err := services.IssuesCSV(issues)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+filename+`.csv"`)
		c.Data(http.StatusOK, "text/csv", []byte(payload))
	default:
		abortWithError(c, fmt.Errorf("%w: unsupported export format", models.ErrValidation))
	}
}
