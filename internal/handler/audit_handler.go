package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"maintenance-app/tracking-service/internal/models"
	"maintenance-app/tracking-service/internal/services"
)

type AuditHandler struct {
	service *services.AuditService
	log     *zap.Logger
}

func NewAuditHandler(service *services.AuditService, log *zap.Logger) *AuditHandler {
	return &AuditHandler{service: service, log: log}
}

// CreateAudit accepts a multipart form: the walkthrough fields plus an
// optional photo. A failed photo upload only clears the uploaded flag.
func (h *AuditHandler) CreateAudit(c *gin.Context) {
	audit := models.RoomAudit{
		BranchID:   c.PostForm("branchId"),
		RoomNumber: c.PostForm("roomNumber"),
		Notes:      c.PostForm("notes"),
		AuditedBy:  c.GetString("user_id"),
	}

	if issues := c.PostForm("issues"); issues != "" {
		for _, item := range strings.Split(issues, ",") {
			if item = strings.TrimSpace(item); item != "" {
				audit.Issues = append(audit.Issues, item)
			}
		}
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

	if err := h.service.CreateAudit(c.Request.Context(), &audit, photo); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, audit)
}

// ListAudits returns a branch's audits, optionally narrowed to one room.
func (h *AuditHandler) ListAudits(c *gin.Context) {
	branchID := c.Query("branchId")
	if branchID == "" {
		abortWithError(c, fmt.Errorf("%w: branchId is required", models.ErrValidation))
		return
	}

	audits, err := h.service.ListAudits(c.Request.Context(), branchID, c.Query("roomNumber"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, audits)
}
