package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a registered user. This service only reads it: the
// scheduling preference drives next-checkup-date computation and the email
// address is used for the best-effort completion notification.
type User struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                 string             `bson:"name" json:"name"`
	Email                string             `bson:"email" json:"email"`
	PreferredCheckupDays []string           `bson:"preferred_checkup_days" json:"preferredCheckupDays"` // weekday names, e.g. "Sunday"
	CheckupFrequency     int                `bson:"checkup_frequency" json:"checkupFrequency"`          // weeks between checkups
	CreatedAt            time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt            time.Time          `bson:"updated_at" json:"updatedAt"`
}
