package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/verdant-app/verdant-server/models"
	"github.com/verdant-app/verdant-server/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RegisterDeviceRequest is the body for POST /devices
type RegisterDeviceRequest struct {
	UserID     string `json:"userId"`
	PlantID    string `json:"plantId,omitempty"`
	Name       string `json:"name"`
	HardwareID string `json:"hardwareId"`
}

// DeviceAPI serves /devices: soil-moisture sensor registration (POST) and
// listing (GET). Telemetry writes happen elsewhere; this surface only
// stores and lists the documents.
type DeviceAPI struct {
	DB *utils.DB
}

func (a *DeviceAPI) Handle(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer func() {
		fmt.Println(logMessageBuilder.String())
	}()
	utils.AddToLogMessage(&logMessageBuilder, "[Devices API]")

	switch r.Method {
	case http.MethodPost:
		a.register(w, r, &logMessageBuilder)
	case http.MethodGet:
		a.list(w, r, &logMessageBuilder)
	default:
		utils.RespondError(w, &logMessageBuilder, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (a *DeviceAPI) register(w http.ResponseWriter, r *http.Request, lb *strings.Builder) {
	var req RegisterDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, lb, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if req.UserID == "" || req.Name == "" || req.HardwareID == "" {
		utils.RespondError(w, lb, "userId, name and hardwareId are required", http.StatusBadRequest)
		return
	}

	device := models.Device{
		ID:         primitive.NewObjectID(),
		UserID:     req.UserID,
		PlantID:    req.PlantID,
		Name:       req.Name,
		HardwareID: req.HardwareID,
		CreatedAt:  time.Now(),
	}

	collection, err := a.DB.Collection(r.Context(), "devices")
	if err != nil {
		utils.RespondError(w, lb, "Failed to register device", http.StatusInternalServerError)
		return
	}
	if _, err := collection.InsertOne(r.Context(), device); err != nil {
		utils.RespondError(w, lb, "Failed to register device", http.StatusInternalServerError)
		return
	}

	utils.AddToLogMessage(lb, fmt.Sprintf("Device %s registered for user %s", device.ID.Hex(), req.UserID))
	utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{"device": device})
}

func (a *DeviceAPI) list(w http.ResponseWriter, r *http.Request, lb *strings.Builder) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		utils.RespondError(w, lb, "Provide a 'userId' query parameter", http.StatusBadRequest)
		return
	}

	collection, err := a.DB.Collection(r.Context(), "devices")
	if err != nil {
		utils.RespondError(w, lb, "Failed to fetch devices", http.StatusInternalServerError)
		return
	}

	findOptions := options.Find()
	findOptions.SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := collection.Find(r.Context(), bson.M{"user_id": userID}, findOptions)
	if err != nil {
		utils.RespondError(w, lb, "Failed to fetch devices", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(r.Context())

	var devices []models.Device
	if err := cursor.All(r.Context(), &devices); err != nil {
		utils.RespondError(w, lb, "Failed to decode devices", http.StatusInternalServerError)
		return
	}
	if devices == nil {
		devices = []models.Device{}
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{"devices": devices})
}
