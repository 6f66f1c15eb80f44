package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Checkup status values. Progression is one-way: a record leaves
// "processing" exactly once, into either "complete" or "error".
const (
	StatusProcessing = "processing"
	StatusComplete   = "complete"
	StatusError      = "error"
)

// Progress stages, in the order the orchestrator moves through them.
// ERROR is reachable from any non-terminal stage.
const (
	StageInitializing     = "INITIALIZING"
	StageImageProcessing  = "IMAGE_PROCESSING"
	StagePlantAnalysis    = "PLANT_ANALYSIS"
	StageHealthAssessment = "HEALTH_ASSESSMENT"
	StageComplete         = "COMPLETE"
	StageError            = "ERROR"
)

// Progress is the advisory stage/percent sub-object overwritten on every
// stage transition. Percent never decreases during normal execution.
type Progress struct {
	Stage   string `bson:"stage" json:"stage"`
	Percent int    `bson:"percent" json:"percent"`
	Message string `bson:"message" json:"message"`
}

// Concern is a single observed issue with its severity (low/medium/high).
type Concern struct {
	Issue    string `bson:"issue" json:"issue"`
	Severity string `bson:"severity" json:"severity"`
}

// CarePlan holds the structured care recommendations from the analysis.
type CarePlan struct {
	Watering      string `bson:"watering" json:"watering"`
	Light         string `bson:"light" json:"light"`
	Fertilization string `bson:"fertilization" json:"fertilization"`
	Maintenance   string `bson:"maintenance" json:"maintenance"`
}

// CheckupResult is the structured analysis stored once a checkup completes.
type CheckupResult struct {
	Stage            string    `bson:"stage" json:"stage"`
	HealthAssessment string    `bson:"health_assessment" json:"healthAssessment"`
	Concerns         []Concern `bson:"concerns" json:"concerns"`
	CarePlan         CarePlan  `bson:"care_plan" json:"carePlan"`
	TodoItems        []string  `bson:"todo_items" json:"todoItems"`
	NextCheckupDate  string    `bson:"next_checkup_date" json:"nextCheckupDate"` // YYYY-MM-DD
}

// ActionItem is seeded 1:1 from CheckupResult.TodoItems. Its completion
// sub-state is owned by the task UI afterwards, not by the pipeline.
type ActionItem struct {
	ID        string    `bson:"id" json:"id"`
	Task      string    `bson:"task" json:"task"`
	Completed bool      `bson:"completed" json:"completed"`
	Comments  []string  `bson:"comments" json:"comments"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// GrowthAnalysis compares the current photo against the previous one.
// Present only when a previous image was supplied and the comparison parsed.
type GrowthAnalysis struct {
	Rate    string   `bson:"rate" json:"rate"`
	Changes []string `bson:"changes" json:"changes"`
}

// Checkup is one AI plant checkup, from submission through terminal state.
type Checkup struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlantID          string             `bson:"plant_id" json:"plantId"`
	UserID           string             `bson:"user_id" json:"userId"`
	ImageURL         string             `bson:"image_url" json:"imageUrl"`
	PreviousImageURL string             `bson:"previous_image_url,omitempty" json:"previousImageUrl,omitempty"`
	Date             time.Time          `bson:"date" json:"date"`
	Status           string             `bson:"status" json:"status"`
	Progress         Progress           `bson:"progress" json:"progress"`
	CheckupResult    *CheckupResult     `bson:"checkup_result,omitempty" json:"checkupResult,omitempty"`
	ActionItems      []ActionItem       `bson:"action_items,omitempty" json:"actionItems,omitempty"`
	GrowthAnalysis   *GrowthAnalysis    `bson:"growth_analysis,omitempty" json:"growthAnalysis,omitempty"`
	Error            string             `bson:"error,omitempty" json:"error,omitempty"`
	ArchivedImageKey string             `bson:"archived_image_key,omitempty" json:"archivedImageKey,omitempty"`
}
