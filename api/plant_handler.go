package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/verdant-app/verdant-server/models"
	"github.com/verdant-app/verdant-server/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PlantAPI serves GET /plants?userId=<id>, a read-only listing of a user's
// tracked plants, newest first.
type PlantAPI struct {
	DB *utils.DB
}

func (a *PlantAPI) Handle(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer func() {
		fmt.Println(logMessageBuilder.String())
	}()
	utils.AddToLogMessage(&logMessageBuilder, "[Plants API]")

	if r.Method != http.MethodGet {
		utils.RespondError(w, &logMessageBuilder, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		utils.RespondError(w, &logMessageBuilder, "Provide a 'userId' query parameter", http.StatusBadRequest)
		return
	}

	collection, err := a.DB.Collection(r.Context(), "plants")
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Failed to fetch plants", http.StatusInternalServerError)
		return
	}

	findOptions := options.Find()
	findOptions.SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := collection.Find(r.Context(), bson.M{"user_id": userID}, findOptions)
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Failed to fetch plants", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(r.Context())

	var plants []models.Plant
	if err := cursor.All(r.Context(), &plants); err != nil {
		utils.RespondError(w, &logMessageBuilder, "Failed to decode plants", http.StatusInternalServerError)
		return
	}
	if plants == nil {
		plants = []models.Plant{}
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{"plants": plants})
}
