package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/verdant-app/verdant-server/api"
	"github.com/verdant-app/verdant-server/checkup"
	"github.com/verdant-app/verdant-server/config"
	"github.com/verdant-app/verdant-server/models"
	"github.com/verdant-app/verdant-server/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func main() {
	config.LoadConfig()

	// Initialize MongoDB
	db := utils.NewDB(config.MongoURI, config.DBName)
	pingCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := db.Ping(pingCtx); err != nil {
		cancel()
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	cancel()
	log.Println("Connected to MongoDB!")
	defer db.Close(context.Background())

	store := &checkup.MongoStore{DB: db}
	orchestrator := &checkup.Orchestrator{
		Store:     store,
		Fetch:     utils.FetchPlantImage,
		Analyze:   utils.AnalyzeCheckup,
		LoadPrefs: userLoader(db),
		Budget:    config.CheckupBudget,
		Archive:   utils.ArchiveCheckupImage,
		Notify:    checkupNotifier(db),
	}

	checkups := &api.CheckupAPI{Store: store, Orch: orchestrator, Presign: utils.GetPresignedURL}
	plants := &api.PlantAPI{DB: db}
	devices := &api.DeviceAPI{DB: db}

	// CORS Middleware
	corsMiddleware := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	http.HandleFunc("/checkups", corsMiddleware(checkups.Handle))
	http.HandleFunc("/plants", corsMiddleware(plants.Handle))
	http.HandleFunc("/devices", corsMiddleware(devices.Handle))

	port := config.Port
	fmt.Printf("Server starting on port %s...\n", port)
	fmt.Printf("Usage: curl -X POST \"http://localhost:%s/checkups\" -d '{\"plantId\":\"...\",\"userId\":\"...\",\"imageUrl\":\"...\"}'\n", port)
	if err := http.ListenAndServe(":"+port, utils.LatencyMiddleware(http.DefaultServeMux)); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

// userLoader reads the user document backing scheduling preferences.
func userLoader(db *utils.DB) checkup.PrefsFunc {
	return func(ctx context.Context, userID string) (*models.User, error) {
		objID, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			return nil, fmt.Errorf("invalid user id: %v", err)
		}
		collection, err := db.Collection(ctx, "users")
		if err != nil {
			return nil, err
		}
		var user models.User
		if err := collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&user); err != nil {
			return nil, err
		}
		return &user, nil
	}
}

// checkupNotifier sends the completion email when the user has an address
// on file and SendGrid is configured. Failures are logged only.
func checkupNotifier(db *utils.DB) checkup.NotifyFunc {
	return func(ctx context.Context, userID, checkupID string) {
		if config.SendGridKey == "" {
			return
		}
		objID, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			return
		}
		collection, err := db.Collection(ctx, "users")
		if err != nil {
			return
		}
		var user models.User
		if err := collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&user); err != nil || user.Email == "" {
			return
		}

		if err := utils.SendCheckupReadyEmail(user.Name, user.Email); err != nil {
			log.Printf("Checkup %s: notification email failed: %v", checkupID, err)
		}
	}
}
