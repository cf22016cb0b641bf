package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"maintenance-app/tracking-service/internal/utils"
)

// IssueCategory enum
type IssueCategory string

const (
	CategoryElectrical IssueCategory = "Electrical"
	CategoryPlumbing   IssueCategory = "Plumbing"
	CategoryFurniture  IssueCategory = "Furniture"
	CategoryHVAC       IssueCategory = "HVAC"
	CategoryCleaning   IssueCategory = "Cleaning"
	CategoryOther      IssueCategory = "Other"
)

// IssueStatus enum
type IssueStatus string

const (
	StatusNew        IssueStatus = "New"
	StatusInProgress IssueStatus = "In Progress"
	StatusCompleted  IssueStatus = "Completed"
)

// IssuePriority enum
type IssuePriority string

const (
	PriorityLow      IssuePriority = "low"
	PriorityMedium   IssuePriority = "medium"
	PriorityCritical IssuePriority = "critical"
)

// TimePreferenceType enum
type TimePreferenceType string

const (
	TimeAnytime TimePreferenceType = "anytime"
	TimeBefore  TimePreferenceType = "before"
	TimeAfter   TimePreferenceType = "after"
)

// TimePreference records when staff may enter the room to fix the issue.
// Datetime is only meaningful for the "before"/"after" types.
type TimePreference struct {
	Type     TimePreferenceType `json:"type" bson:"type" validate:"omitempty,eq=anytime|eq=before|eq=after"`
	Datetime *time.Time         `json:"datetime,omitempty" bson:"datetime,omitempty"`
}

// Comment is a single append-only note on an issue. CommentID is generated
// client-side before persistence so callers have a stable key immediately.
type Comment struct {
	CommentID string    `json:"commentId" bson:"commentId"`
	Text      string    `json:"text" bson:"text"`
	Author    string    `json:"author" bson:"author"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// Issue represents one maintenance issue reported for a room or a named
// location of a branch. Exactly one of RoomNumber/Location is set.
type Issue struct {
	ID                primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	BranchID          string             `json:"branchId" bson:"branchId" validate:"required"`
	RoomNumber        string             `json:"roomNumber,omitempty" bson:"roomNumber,omitempty"`
	Location          string             `json:"location,omitempty" bson:"location,omitempty"`
	Category          IssueCategory      `json:"category" bson:"category" validate:"required,eq=Electrical|eq=Plumbing|eq=Furniture|eq=HVAC|eq=Cleaning|eq=Other"`
	Description       string             `json:"description" bson:"description" validate:"required"`
	Priority          IssuePriority      `json:"priority" bson:"priority" validate:"required,eq=low|eq=medium|eq=critical"`
	Status            IssueStatus        `json:"status" bson:"status"`
	AuthorName        string             `json:"authorName" bson:"authorName" validate:"required"`
	TimePreference    TimePreference     `json:"timePreference" bson:"timePreference"`
	PhotoURL          string             `json:"photoUrl,omitempty" bson:"photoUrl,omitempty"`
	PhotoUploadFailed bool               `json:"photoUploadFailed,omitempty" bson:"photoUploadFailed,omitempty"`
	PhotoErrorMessage string             `json:"photoErrorMessage,omitempty" bson:"photoErrorMessage,omitempty"`
	Comments          []Comment          `json:"comments" bson:"comments"`
	ReportedBy        string             `json:"reportedBy,omitempty" bson:"reportedBy,omitempty"`
	CreatedAt         time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Validate checks required fields and the room/location invariant.
func (i Issue) Validate() error {
	validate := utils.GetValidator()
	if err := validate.Struct(i); err != nil {
		errs := utils.ParseErrors(err)
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(errs, " // "))
	}

	// Exactly one of roomNumber/location identifies the place.
	hasRoom := strings.TrimSpace(i.RoomNumber) != ""
	hasLocation := strings.TrimSpace(i.Location) != ""
	if hasRoom == hasLocation {
		return fmt.Errorf("%w: exactly one of roomNumber or location must be set", ErrValidation)
	}

	if i.TimePreference.Type == TimeBefore || i.TimePreference.Type == TimeAfter {
		if i.TimePreference.Datetime == nil {
			return fmt.Errorf("%w: timePreference.datetime is required for type %q", ErrValidation, i.TimePreference.Type)
		}
	}

	return nil
}

// Place returns whichever of room number or named location is set.
func (i Issue) Place() string {
	if i.RoomNumber != "" {
		return i.RoomNumber
	}
	return i.Location
}

// LastTouched is the timestamp used to order completed issues: updatedAt
// when present, otherwise createdAt.
func (i Issue) LastTouched() time.Time {
	if !i.UpdatedAt.IsZero() {
		return i.UpdatedAt
	}
	return i.CreatedAt
}

// CanTransition reports whether moving to the target status is an allowed
// edge: New -> In Progress -> Completed, plus Completed -> New (reopen).
func (i Issue) CanTransition(target IssueStatus) bool {
	switch i.Status {
	case StatusNew:
		return target == StatusInProgress
	case StatusInProgress:
		return target == StatusCompleted
	case StatusCompleted:
		return target == StatusNew
	default:
		return false
	}
}

// StatusUpdate represents a status transition request.
type StatusUpdate struct {
	Status IssueStatus `json:"status" validate:"required,eq=New|eq=In Progress|eq=Completed"`
}
