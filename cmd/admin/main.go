package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"traderlink/backend/internal/config"
	"traderlink/backend/internal/models"
	"traderlink/backend/internal/storage"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	storageSvc := storage.NewStorageService(db, nil) // No redis needed for admin CLI

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "add-user":
		if len(os.Args) < 4 {
			fmt.Println("Usage: admin add-user <display_name> <email> [provider]")
			os.Exit(1)
		}
		user := &models.User{
			DisplayName:    os.Args[2],
			Email:          os.Args[3],
			IsProvider:     len(os.Args) > 4 && os.Args[4] == "provider",
			NotifyChannels: pq.StringArray{"email"},
		}
		if err := storageSvc.SaveUser(user); err != nil {
			log.Fatalf("Error creating user: %v", err)
		}
		fmt.Printf("User %s created with ID %s.\n", user.DisplayName, user.ID)

	case "open-room":
		if len(os.Args) != 5 {
			fmt.Println("Usage: admin open-room <requester_id> <provider_id> <option_tag>")
			os.Exit(1)
		}
		room := &models.ChatRoom{
			RoomID:      uuid.New().String(),
			RequesterID: os.Args[2],
			ProviderID:  os.Args[3],
			OptionTag:   os.Args[4],
			IsActive:    true,
			StartedAt:   time.Now(),
		}
		if err := storageSvc.SaveRoom(room); err != nil {
			log.Fatalf("Error opening room: %v", err)
		}
		fmt.Printf("Room %s opened for %s and %s.\n", room.RoomID, room.RequesterID, room.ProviderID)

	case "close-room":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin close-room <room_id>")
			os.Exit(1)
		}
		roomID := os.Args[2]
		if err := storageSvc.CloseRoom(roomID); err != nil {
			log.Fatalf("Error closing room: %v", err)
		}
		fmt.Printf("Room %s has been closed.\n", roomID)

	case "quota":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin quota <user_id>")
			os.Exit(1)
		}
		userID := os.Args[2]
		now := time.Now().In(config.WATZone)
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, config.WATZone)
		count, err := storageSvc.CountNotificationsSince(userID, midnight)
		if err != nil {
			log.Fatalf("Error counting notifications: %v", err)
		}
		fmt.Printf("User %s: %d of %d notifications used today.\n", userID, count, config.DailyEmailQuota)

	case "history":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin history <room_id>")
			os.Exit(1)
		}
		roomID := os.Args[2]
		msgs, err := storageSvc.GetRoomMessages(roomID, 20)
		if err != nil {
			log.Fatalf("Error loading messages: %v", err)
		}
		for _, m := range msgs {
			read := " "
			if m.IsRead {
				read = "r"
			}
			fmt.Printf("[%s] (%s) %s: %s\n", m.CreatedAt.Format(time.RFC3339), read, m.SenderID, m.Content)
		}

	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}
