package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"maintenance-app/tracking-service/internal/models"
)

const branchCollection = "branches"

type BranchRepository struct {
	db  *mongo.Database
	log *zap.Logger
}

func NewBranchRepository(db *mongo.Database, log *zap.Logger) *BranchRepository {
	return &BranchRepository{db: db, log: log}
}

func (r *BranchRepository) GetAllBranches(ctx context.Context) ([]models.Branch, error) {
	cursor, err := r.db.Collection(branchCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, translateError(err)
	}
	defer cursor.Close(ctx)

	var branches []models.Branch
	if err := cursor.All(ctx, &branches); err != nil {
		return nil, translateError(err)
	}

	if branches == nil {
		branches = []models.Branch{}
	}
	for i := range branches {
		if branches[i].Rooms == nil {
			branches[i].Rooms = map[string]models.Room{}
		}
	}

	return branches, nil
}

func (r *BranchRepository) GetBranch(ctx context.Context, id primitive.ObjectID) (*models.Branch, error) {
	var branch models.Branch
	err := r.db.Collection(branchCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&branch)
	if err != nil {
		return nil, translateError(err)
	}

	if branch.Rooms == nil {
		branch.Rooms = map[string]models.Room{}
	}

	return &branch, nil
}

func (r *BranchRepository) CreateBranch(ctx context.Context, branch *models.Branch) error {
	branch.ID = primitive.NewObjectID()
	now := time.Now()
	branch.CreatedAt = now
	branch.UpdatedAt = now
	if branch.Rooms == nil {
		branch.Rooms = map[string]models.Room{}
	}

	_, err := r.db.Collection(branchCollection).InsertOne(ctx, branch)
	return translateError(err)
}

func (r *BranchRepository) UpdateBranch(ctx context.Context, branch *models.Branch) error {
	branch.UpdatedAt = time.Now()

	result, err := r.db.Collection(branchCollection).UpdateOne(ctx,
		bson.M{"_id": branch.ID},
		bson.M{"$set": bson.M{
			"name":        branch.Name,
			"address":     branch.Address,
			"totalFloors": branch.TotalFloors,
			"totalRooms":  branch.TotalRooms,
			"rooms":       branch.Rooms,
			"updatedAt":   branch.UpdatedAt,
		}},
	)
	if err != nil {
		return translateError(err)
	}

	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}

	return nil
}

// DeleteBranch removes the branch document. Rooms are embedded so they go
// with it; issues referencing the branch are left alone on purpose.
func (r *BranchRepository) DeleteBranch(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.db.Collection(branchCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translateError(err)
	}

	if result.DeletedCount == 0 {
		return models.ErrNotFound
	}

	return nil
}
