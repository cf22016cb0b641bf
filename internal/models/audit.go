package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"maintenance-app/tracking-service/internal/utils"
)

// RoomAudit is a walkthrough record for a single room: a checklist of
// observed problems plus free-form notes. Simpler than Issue, no status
// machine and no comments.
type RoomAudit struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	BranchID       string             `json:"branchId" bson:"branchId" validate:"required"`
	RoomNumber     string             `json:"roomNumber" bson:"roomNumber" validate:"required"`
	Timestamp      time.Time          `json:"timestamp" bson:"timestamp"`
	Issues         []string           `json:"issues" bson:"issues"`
	Notes          string             `json:"notes" bson:"notes"`
	ImageURL       string             `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	PhotoAttempted bool               `json:"photoAttempted" bson:"photoAttempted"`
	PhotoUploaded  bool               `json:"photoUploaded" bson:"photoUploaded"`
	AuditedBy      string             `json:"auditedBy,omitempty" bson:"auditedBy,omitempty"`
}

// Validate validates the RoomAudit.
func (a RoomAudit) Validate() error {
	validate := utils.GetValidator()
	if err := validate.Struct(a); err != nil {
		errs := utils.ParseErrors(err)
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(errs, " // "))
	}
	return nil
}
