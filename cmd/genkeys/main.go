package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"codeberg.org/tasklist/server/internal/auth"
)

// prints fresh secrets for a deployment, or a bearer token for local testing with -user-id
func main() {
	userID := flag.Int64("user-id", 0, "issue a bearer token for this user id using JWT_SECRET")
	ttl := flag.Duration("ttl", 24*time.Hour, "lifetime of the issued token")
	flag.Parse()

	if *userID > 0 {
		printToken(*userID, *ttl)
		return
	}

	fmt.Println("Generated secure keys:")
	fmt.Printf("JWT_SECRET=%s\n", secret())
	fmt.Printf("SESSION_SECRET=%s\n", secret())
	fmt.Println("\nCopy these values to your environment.")
}

func secret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalf("failed to read random bytes: %v", err)
	}

	return hex.EncodeToString(buf)
}

func printToken(userID int64, ttl time.Duration) {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: .env file not found")
	}

	issuer, err := auth.NewTokenIssuer(os.Getenv("JWT_SECRET"), ttl)
	if err != nil {
		log.Fatalf("failed to create token issuer: %v", err)
	}

	token, err := issuer.Issue(userID)
	if err != nil {
		log.Fatalf("failed to issue token: %v", err)
	}

	fmt.Printf("Bearer token for user %d (expires in %s):\n%s\n", userID, ttl, token)
}
