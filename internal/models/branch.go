package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"maintenance-app/tracking-service/internal/utils"
)

// Room is one hotel room inside a branch's room map.
type Room struct {
	Floor     int  `json:"floor" bson:"floor"`
	Available bool `json:"available" bson:"available"`
}

// Branch is a hotel branch. Rooms are embedded, keyed by room number, so
// deleting a branch removes its room records but never cascades to issues.
type Branch struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name" validate:"required"`
	Address     string             `json:"address" bson:"address"`
	TotalFloors int                `json:"totalFloors" bson:"totalFloors" validate:"gte=0"`
	TotalRooms  int                `json:"totalRooms" bson:"totalRooms" validate:"gte=0"`
	Rooms       map[string]Room    `json:"rooms" bson:"rooms"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Validate validates the Branch.
func (b Branch) Validate() error {
	validate := utils.GetValidator()
	if err := validate.Struct(b); err != nil {
		errs := utils.ParseErrors(err)
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(errs, " // "))
	}
	return nil
}
