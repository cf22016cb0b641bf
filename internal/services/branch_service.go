package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"maintenance-app/tracking-service/internal/models"
)

// BranchRepository is the persistence contract for branch management.
type BranchRepository interface {
	GetAllBranches(ctx context.Context) ([]models.Branch, error)
	GetBranch(ctx context.Context, id primitive.ObjectID) (*models.Branch, error)
	CreateBranch(ctx context.Context, branch *models.Branch) error
	UpdateBranch(ctx context.Context, branch *models.Branch) error
	DeleteBranch(ctx context.Context, id primitive.ObjectID) error
}

type BranchService struct {
	repo BranchRepository
}

func NewBranchService(repo BranchRepository) *BranchService {
	return &BranchService{repo: repo}
}

func (s *BranchService) GetAllBranches(ctx context.Context) ([]models.Branch, error) {
	return s.repo.GetAllBranches(ctx)
}

func (s *BranchService) GetBranch(ctx context.Context, id string) (*models.Branch, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrInvalidID
	}

	return s.repo.GetBranch(ctx, objID)
}

func (s *BranchService) CreateBranch(ctx context.Context, branch *models.Branch) error {
	if err := branch.Validate(); err != nil {
		return err
	}

	return s.repo.CreateBranch(ctx, branch)
}

func (s *BranchService) UpdateBranch(ctx context.Context, branch *models.Branch) error {
	if branch.ID.IsZero() {
		return models.ErrInvalidID
	}

	if err := branch.Validate(); err != nil {
		return err
	}

	return s.repo.UpdateBranch(ctx, branch)
}

// DeleteBranch removes the branch and its embedded rooms. Issues keep
// their branchId; there is no referential integrity to enforce.
func (s *BranchService) DeleteBranch(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.ErrInvalidID
	}

	return s.repo.DeleteBranch(ctx, objID)
}
