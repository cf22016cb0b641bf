package repository

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"maintenance-app/tracking-service/internal/models"
)

const (
	issueCollection = "issues"

	// maxBatchOps caps one bulk write, mirroring the backing store's
	// per-batch operation limit.
	maxBatchOps = 500
)

type IssueRepository struct {
	db  *mongo.Database
	log *zap.Logger
}

func NewIssueRepository(db *mongo.Database, log *zap.Logger) *IssueRepository {
	return &IssueRepository{db: db, log: log}
}

// FetchIssues loads every issue of a branch, newest first. The ordered
// compound query needs a composite index; when the server rejects it for
// lack of one, the adapter retries unordered and sorts client-side. The
// returned degraded flag tells the caller server-side ordering was lost,
// the slice shape is identical either way.
func (r *IssueRepository) FetchIssues(ctx context.Context, branchID string) ([]models.Issue, bool, error) {
	collection := r.db.Collection(issueCollection)
	filter := bson.M{"branchId": branchID}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	issues, err := r.findIssues(ctx, collection, filter, opts)
	if err == nil {
		return issues, false, nil
	}

	if !isMissingIndex(err) {
		return nil, false, translateError(err)
	}

	r.log.Warn("ordered issue query rejected, falling back to client-side sort",
		zap.String("branchId", branchID),
		zap.Error(err),
	)

	issues, err = r.findIssues(ctx, collection, filter, options.Find())
	if err != nil {
		return nil, false, translateError(err)
	}

	sortByCreatedAtDesc(issues)
	return issues, true, nil
}

func (r *IssueRepository) findIssues(ctx context.Context, collection *mongo.Collection, filter bson.M, opts *options.FindOptions) ([]models.Issue, error) {
	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, err
	}

	if issues == nil {
		issues = []models.Issue{}
	}
	for i := range issues {
		normalizeIssue(&issues[i])
	}

	return issues, nil
}

// normalizeIssue fills defaults for partially stored records.
func normalizeIssue(issue *models.Issue) {
	if issue.Comments == nil {
		issue.Comments = []models.Comment{}
	}
	if issue.CreatedAt.IsZero() {
		issue.CreatedAt = time.Now()
	}
	if issue.UpdatedAt.IsZero() {
		issue.UpdatedAt = issue.CreatedAt
	}
}

func sortByCreatedAtDesc(issues []models.Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].CreatedAt.After(issues[j].CreatedAt)
	})
}

// GetIssue loads a single issue by id.
func (r *IssueRepository) GetIssue(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	var issue models.Issue
	err := r.db.Collection(issueCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&issue)
	if err != nil {
		return nil, translateError(err)
	}

	normalizeIssue(&issue)
	return &issue, nil
}

// CreateIssue persists a new issue. The stored status is always New no
// matter what the caller set, and timestamps are assigned here.
func (r *IssueRepository) CreateIssue(ctx context.Context, issue *models.Issue) error {
	issue.ID = primitive.NewObjectID()
	issue.Status = models.StatusNew
	now := time.Now()
	issue.CreatedAt = now
	issue.UpdatedAt = now
	if issue.Comments == nil {
		issue.Comments = []models.Comment{}
	}

	_, err := r.db.Collection(issueCollection).InsertOne(ctx, issue)
	return translateError(err)
}

// UpdateStatus persists a status change plus the updated timestamp.
func (r *IssueRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.IssueStatus, updatedAt time.Time) error {
	result, err := r.db.Collection(issueCollection).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"status":    status,
			"updatedAt": updatedAt,
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

// AppendComment appends one comment to the issue document through the
// store's atomic array-append primitive, so concurrent appends from other
// clients are never overwritten.
func (r *IssueRepository) AppendComment(ctx context.Context, id primitive.ObjectID, comment models.Comment) error {
	result, err := r.db.Collection(issueCollection).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$push": bson.M{"comments": comment}},
	)
	if err != nil {
		return translateError(err)
	}

	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}

	return nil
}

// DeleteIssue removes one issue.
func (r *IssueRepository) DeleteIssue(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.db.Collection(issueCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translateError(err)
	}

	if result.DeletedCount == 0 {
		return models.ErrNotFound
	}

	return nil
}

// DeleteAllIssues removes every issue of a branch in bulk-write chunks of
// at most maxBatchOps deletes. Finding nothing to delete is success.
func (r *IssueRepository) DeleteAllIssues(ctx context.Context, branchID string) (int64, error) {
	collection := r.db.Collection(issueCollection)

	cursor, err := collection.Find(ctx,
		bson.M{"branchId": branchID},
		options.Find().SetProjection(bson.M{"_id": 1}),
	)
	if err != nil {
		return 0, translateError(err)
	}

	var refs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &refs); err != nil {
		return 0, translateError(err)
	}

	if len(refs) == 0 {
		return 0, nil
	}

	var deleted int64
	for start := 0; start < len(refs); start += maxBatchOps {
		end := start + maxBatchOps
		if end > len(refs) {
			end = len(refs)
		}

		batch := make([]mongo.WriteModel, 0, end-start)
		for _, ref := range refs[start:end] {
			batch = append(batch, mongo.NewDeleteOneModel().SetFilter(bson.M{"_id": ref.ID}))
		}

		result, err := collection.BulkWrite(ctx, batch)
		if err != nil {
			return deleted, translateError(err)
		}
		deleted += result.DeletedCount
	}

	return deleted, nil
}

// Stats aggregates dashboard counters for one branch.
func (r *IssueRepository) Stats(ctx context.Context, branchID string) (*models.BranchStats, error) {
	collection := r.db.Collection(issueCollection)

	stats := &models.BranchStats{
		BranchID:   branchID,
		ByCategory: map[string]int64{},
		ByStatus:   map[string]int64{},
		ByPriority: map[string]int64{},
	}

	pipelines := map[string]string{
		"$category": "category",
		"$status":   "status",
		"$priority": "priority",
	}
	for field, name := range pipelines {
		groups, err := r.groupCounts(ctx, collection, branchID, field)
		if err != nil {
			return nil, err
		}
		switch name {
		case "category":
			stats.ByCategory = groups
		case "status":
			stats.ByStatus = groups
		case "priority":
			stats.ByPriority = groups
		}
	}

	for _, count := range stats.ByStatus {
		stats.TotalIssues += count
	}
	stats.OpenIssues = stats.ByStatus[string(models.StatusNew)] + stats.ByStatus[string(models.StatusInProgress)]

	// Issue volume for the trailing week, one bucket per day.
	for i := 6; i >= 0; i-- {
		date := time.Now().AddDate(0, 0, -i)
		date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
		nextDate := date.AddDate(0, 0, 1)

		count, err := collection.CountDocuments(ctx, bson.M{
			"branchId":  branchID,
			"createdAt": bson.M{"$gte": date, "$lt": nextDate},
		})
		if err != nil {
			return nil, translateError(err)
		}

		stats.Last7Days = append(stats.Last7Days, models.DayCount{
			Date:  date.Format("2006-01-02"),
			Count: count,
		})
	}

	return stats, nil
}

func (r *IssueRepository) groupCounts(ctx context.Context, collection *mongo.Collection, branchID, field string) (map[string]int64, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"branchId": branchID}},
		{"$group": bson.M{
			"_id":   field,
			"count": bson.M{"$sum": 1},
		}},
	}

	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, translateError(err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID    string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, translateError(err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.ID] = row.Count
	}

	return counts, nil
}
