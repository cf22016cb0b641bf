package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"maintenance-app/tracking-service/internal/models"
)

const auditCollection = "room_audits"

type AuditRepository struct {
	db  *mongo.Database
	log *zap.Logger
}

func NewAuditRepository(db *mongo.Database, log *zap.Logger) *AuditRepository {
	return &AuditRepository{db: db, log: log}
}

func (r *AuditRepository) CreateAudit(ctx context.Context, audit *models.RoomAudit) error {
	audit.ID = primitive.NewObjectID()
	if audit.Timestamp.IsZero() {
		audit.Timestamp = time.Now()
	}
	if audit.Issues == nil {
		audit.Issues = []string{}
	}

	_, err := r.db.Collection(auditCollection).InsertOne(ctx, audit)
	return translateError(err)
}

// FetchAudits lists audits for a branch, optionally narrowed to one room,
// newest first.
func (r *AuditRepository) FetchAudits(ctx context.Context, branchID, roomNumber string) ([]models.RoomAudit, error) {
	filter := bson.M{"branchId": branchID}
	if roomNumber != "" {
		filter["roomNumber"] = roomNumber
	}

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := r.db.Collection(auditCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, translateError(err)
	}
	defer cursor.Close(ctx)

	var audits []models.RoomAudit
	if err := cursor.All(ctx, &audits); err != nil {
		return nil, translateError(err)
	}

	if audits == nil {
		audits = []models.RoomAudit{}
	}
	for i := range audits {
		normalizeAudit(&audits[i])
	}

	return audits, nil
}

// normalizeAudit fills defaults for partially stored records.
func normalizeAudit(audit *models.RoomAudit) {
	if audit.Issues == nil {
		audit.Issues = []string{}
	}
	if audit.Timestamp.IsZero() {
		audit.Timestamp = time.Now()
	}
}
