package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/worklinkgh/tasker-onboarding/pkg/auth"
)

// Mints a worker session token for local testing against the onboarding API.
// Pass -worker to reuse an existing worker ID, otherwise a fresh one is
// generated.
func main() {
	workerFlag := flag.String("worker", "", "worker UUID (defaults to a new one)")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifespan")
	flag.Parse()

	err := godotenv.Load()
	if err != nil {
		log.Println("warning: .env file not found, use system environment variables.")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	workerID := uuid.New()
	if *workerFlag != "" {
		workerID, err = uuid.Parse(*workerFlag)
		if err != nil {
			log.Fatalf("invalid worker id: %v", err)
		}
	}

	token, err := auth.NewJWTService(secret, *ttl).GenerateToken(workerID)
	if err != nil {
		log.Fatalf("cannot sign token: %v", err)
	}

	fmt.Printf("worker: %s\ntoken:  %s\n", workerID, token)
}
