package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/verdant-app/verdant-server/checkup"
	"github.com/verdant-app/verdant-server/models"
	"github.com/verdant-app/verdant-server/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubmitCheckupRequest is the body for POST /checkups
type SubmitCheckupRequest struct {
	PlantID          string `json:"plantId"`
	UserID           string `json:"userId"`
	ImageURL         string `json:"imageUrl"`
	PreviousImageURL string `json:"previousImageUrl,omitempty"`
}

// CheckupAPI serves /checkups: submission (POST), polling and listing
// (GET), deletion (DELETE).
type CheckupAPI struct {
	Store checkup.Store
	Orch  *checkup.Orchestrator

	// Presign turns a stored archive key into a readable URL for
	// responses. Optional.
	Presign func(ctx context.Context, objectKey string) (string, error)
}

// Handle dispatches /checkups by method
func (a *CheckupAPI) Handle(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer func() {
		fmt.Println(logMessageBuilder.String())
	}()
	utils.AddToLogMessage(&logMessageBuilder, "[Checkups API]")

	switch r.Method {
	case http.MethodPost:
		a.submit(w, r, &logMessageBuilder)
	case http.MethodGet:
		a.poll(w, r, &logMessageBuilder)
	case http.MethodDelete:
		a.remove(w, r, &logMessageBuilder)
	default:
		utils.RespondError(w, &logMessageBuilder, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// submit validates the request, creates the processing record, and launches
// the orchestrator detached from the response lifecycle. The 202 goes out
// immediately; the client polls for the outcome.
func (a *CheckupAPI) submit(w http.ResponseWriter, r *http.Request, lb *strings.Builder) {
	var req SubmitCheckupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, lb, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if req.PlantID == "" || req.UserID == "" || req.ImageURL == "" {
		utils.RespondError(w, lb, "plantId, userId and imageUrl are required", http.StatusBadRequest)
		return
	}

	utils.AddToLogMessage(lb, fmt.Sprintf("Checkup submission: PlantID=%s, UserID=%s", req.PlantID, req.UserID))

	rec := &models.Checkup{
		ID:               primitive.NewObjectID(),
		PlantID:          req.PlantID,
		UserID:           req.UserID,
		ImageURL:         req.ImageURL,
		PreviousImageURL: req.PreviousImageURL,
		Date:             time.Now(),
		Status:           models.StatusProcessing,
		Progress: models.Progress{
			Stage:   models.StageInitializing,
			Percent: 0,
			Message: "Checkup queued",
		},
	}

	id, err := a.Store.Create(r.Context(), rec)
	if err != nil {
		utils.RespondError(w, lb, "Failed to create checkup record", http.StatusInternalServerError)
		return
	}

	// Detached continuation: the goroutine outlives this request and owns
	// every further write to the record.
	go a.Orch.Run(rec)

	utils.AddToLogMessage(lb, fmt.Sprintf("Checkup %s accepted", id))
	utils.RespondJSON(w, http.StatusAccepted, map[string]interface{}{
		"status":    models.StatusProcessing,
		"checkupId": id,
		"message":   "Checkup started. Poll with checkupId for progress.",
	})
}

// poll returns one record by checkupId, or all records for a plantId,
// newest first. Read-only.
func (a *CheckupAPI) poll(w http.ResponseWriter, r *http.Request, lb *strings.Builder) {
	if checkupID := r.URL.Query().Get("checkupId"); checkupID != "" {
		rec, err := a.Store.Get(r.Context(), checkupID)
		if err != nil {
			if errors.Is(err, checkup.ErrNotFound) {
				utils.RespondError(w, lb, "Checkup not found", http.StatusNotFound)
			} else {
				utils.RespondError(w, lb, "Failed to fetch checkup", http.StatusInternalServerError)
			}
			return
		}

		if rec.ArchivedImageKey != "" && a.Presign != nil {
			if url, perr := a.Presign(r.Context(), rec.ArchivedImageKey); perr == nil {
				rec.ArchivedImageKey = url
			}
		}

		response := map[string]interface{}{
			"status":  rec.Status,
			"message": rec.Progress.Message,
			"checkup": rec,
		}
		if rec.Status == models.StatusProcessing {
			response["progress"] = rec.Progress
		}
		if rec.Status == models.StatusError {
			response["error"] = rec.Error
		}
		utils.RespondJSON(w, http.StatusOK, response)
		return
	}

	if plantID := r.URL.Query().Get("plantId"); plantID != "" {
		checkups, err := a.Store.ListByPlant(r.Context(), plantID)
		if err != nil {
			utils.RespondError(w, lb, "Failed to fetch checkups", http.StatusInternalServerError)
			return
		}
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{"checkups": checkups})
		return
	}

	utils.RespondError(w, lb, "Provide a 'checkupId' or 'plantId' query parameter", http.StatusBadRequest)
}

func (a *CheckupAPI) remove(w http.ResponseWriter, r *http.Request, lb *strings.Builder) {
	id := r.URL.Query().Get("id")
	if id == "" {
		utils.RespondError(w, lb, "Provide an 'id' query parameter", http.StatusBadRequest)
		return
	}

	if err := a.Store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, checkup.ErrNotFound) {
			utils.RespondError(w, lb, "Checkup not found", http.StatusNotFound)
		} else {
			utils.RespondError(w, lb, "Failed to delete checkup", http.StatusInternalServerError)
		}
		return
	}
	utils.AddToLogMessage(lb, fmt.Sprintf("Checkup %s deleted", id))
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Checkup deleted"})
}
