package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"maintenance-app/tracking-service/internal/models"
	"maintenance-app/tracking-service/internal/services"
)

type BranchHandler struct {
	service   *services.BranchService
	branchCtx *services.BranchContext
	log       *zap.Logger
}

func NewBranchHandler(service *services.BranchService, branchCtx *services.BranchContext, log *zap.Logger) *BranchHandler {
	return &BranchHandler{service: service, branchCtx: branchCtx, log: log}
}

func (h *BranchHandler) ListBranches(c *gin.Context) {
	branches, err := h.service.GetAllBranches(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, branches)
}

func (h *BranchHandler) GetBranch(c *gin.Context) {
	branch, err := h.service.GetBranch(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, branch)
}

func (h *BranchHandler) CreateBranch(c *gin.Context) {
	var branch models.Branch
	if err := c.ShouldBindJSON(&branch); err != nil {
		abortWithError(c, fmt.Errorf("%w: %v", models.ErrValidation, err))
		return
	}

	if err := h.service.CreateBranch(c.Request.Context(), &branch); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, branch)
}

func (h *BranchHandler) UpdateBranch(c *gin.Context) {
	existing, err := h.service.GetBranch(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	var branch models.Branch
	if err := c.ShouldBindJSON(&branch); err != nil {
		abortWithError(c, fmt.Errorf("%w: %v", models.ErrValidation, err))
		return
	}
	branch.ID = existing.ID

	if err := h.service.UpdateBranch(c.Request.Context(), &branch); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, branch)
}

func (h *BranchHandler) DeleteBranch(c *gin.Context) {
	if err := h.service.DeleteBranch(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Branch deleted successfully"})
}

// CurrentBranch returns the session's persisted branch selection.
func (h *BranchHandler) CurrentBranch(c *gin.Context) {
	sessionID := c.GetString("user_id")

	branchID, err := h.branchCtx.CurrentBranch(c.Request.Context(), sessionID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"branchId": branchID})
}

// SetCurrentBranch stores the session's branch selection after checking
// the branch exists.
func (h *BranchHandler) SetCurrentBranch(c *gin.Context) {
	sessionID := c.GetString("user_id")

	var input struct {
		BranchID string `json:"branchId"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, fmt.Errorf("%w: %v", models.ErrValidation, err))
		return
	}

	if _, err := h.service.GetBranch(c.Request.Context(), input.BranchID); err != nil {
		abortWithError(c, err)
		return
	}

	if err := h.branchCtx.SetCurrentBranch(c.Request.Context(), sessionID, input.BranchID); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"branchId": input.BranchID})
}
