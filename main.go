package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/DimaChup/anki-flashcards-sub000/internal/api"
	"github.com/DimaChup/anki-flashcards-sub000/internal/database"
	"github.com/DimaChup/anki-flashcards-sub000/internal/deck"
	"github.com/DimaChup/anki-flashcards-sub000/internal/scheduler"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	service := deck.NewService(db)

	sched := scheduler.New(service)
	sched.Start()
	defer sched.Stop()

	server := api.NewServer(service, db)
	if err := server.Start(); err != nil {
		log.Fatalf("Failed to start API server: %v", err)
	}

	done := make(chan struct{})

	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v\n", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}

		close(done)
	}()

	log.Println("Flashcards service started. Press Ctrl+C to stop.")

	<-done
	log.Println("Flashcards service stopped successfully")
}
