package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Device represents a registered soil-moisture sensor. LastMoisture and
// LastSeenAt are written by the telemetry ingest path; this service only
// registers and lists devices.
type Device struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       string             `bson:"user_id" json:"userId"`
	PlantID      string             `bson:"plant_id,omitempty" json:"plantId,omitempty"`
	Name         string             `bson:"name" json:"name"`
	HardwareID   string             `bson:"hardware_id" json:"hardwareId"`
	LastMoisture float64            `bson:"last_moisture,omitempty" json:"lastMoisture,omitempty"` // percent
	LastSeenAt   time.Time          `bson:"last_seen_at,omitempty" json:"lastSeenAt,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
}
