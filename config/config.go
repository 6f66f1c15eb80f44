package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var (
	MongoURI      string
	DBName        string
	Port          string
	GeminiAPIKey  string
	GeminiModel   string
	AWSRegion     string
	AWSBucketName string
	SendGridKey   string
	SenderEmail   string

	// CheckupBudget is how long a background checkup may run before it is
	// aborted. It must stay below the host's hard execution ceiling (30s)
	// so the final error write still has time to land.
	CheckupBudget time.Duration
)

// LoadConfig loads environment variables from .env file
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using default values or system environment variables")
	}

	MongoURI = os.Getenv("MONGO_URI")
	if MongoURI == "" {
		MongoURI = "mongodb://localhost:27017/"
	}

	DBName = os.Getenv("DB_NAME")
	if DBName == "" {
		DBName = "verdant"
	}

	Port = os.Getenv("PORT")
	if Port == "" {
		Port = "8080"
	}

	GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	GeminiModel = os.Getenv("GEMINI_MODEL")
	if GeminiModel == "" {
		GeminiModel = "gemini-1.5-flash"
	}

	AWSRegion = os.Getenv("AWS_REGION")
	if AWSRegion == "" {
		AWSRegion = "ap-south-1"
	}
	AWSBucketName = os.Getenv("AWS_BUCKET_NAME")

	SendGridKey = os.Getenv("SENDGRID_API_KEY")
	SenderEmail = os.Getenv("SENDER_EMAIL")
	if SenderEmail == "" {
		SenderEmail = "no-reply@verdant.app"
	}

	CheckupBudget = 25 * time.Second
	if s := os.Getenv("CHECKUP_BUDGET_SECONDS"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil && secs > 0 {
			CheckupBudget = time.Duration(secs) * time.Second
		}
	}
}
