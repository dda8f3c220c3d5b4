// Command keygen generates an invite key and stores it in the database.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"wiki-character-chat/backend/internal/models"
	"wiki-character-chat/backend/pkg/config"
)

func main() {
	label := flag.String("label", "", "optional label describing who the key is for")
	flag.Parse()

	cfg := config.Load()

	db, err := config.NewDB(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to database: %v\n", err)
		os.Exit(1)
	}

	if err := db.AutoMigrate(&models.InviteKey{}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to migrate invite_keys table: %v\n", err)
		os.Exit(1)
	}

	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		fmt.Fprintf(os.Stderr, "failed to generate key material: %v\n", err)
		os.Exit(1)
	}

	key := models.InviteKey{
		KeyValue: hex.EncodeToString(buf),
		Label:    *label,
		IsActive: true,
	}
	if err := db.Create(&key).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to store invite key: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("invite key created (id %d):\n%s\n", key.ID, key.KeyValue)
}
