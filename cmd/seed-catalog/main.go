package main

import (
	"context"
	"fmt"

	"github.com/studyhub/studyhub-backend/internal/config"
	"github.com/studyhub/studyhub-backend/internal/database"
	"github.com/studyhub/studyhub-backend/internal/logger"
	"github.com/studyhub/studyhub-backend/internal/model"
	"github.com/studyhub/studyhub-backend/internal/repository"
)

// Seeds a starter subject catalog into an empty database. Safe to run once
// after migrations; running it again appends duplicates.
func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	subjectRepo := repository.NewSubjectRepository(pool)

	existing, err := subjectRepo.List(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read subjects")
	}
	if len(existing) > 0 {
		fmt.Printf("Catalog already has %d subjects, nothing to do\n", len(existing))
		return
	}

	seeds := []model.Subject{
		{Name: "Mathematics", Instructor: "Mr. Sharma", Icon: "calculator", Color: "#2563eb"},
		{Name: "Physics", Instructor: "Mrs. Iyer", Icon: "atom", Color: "#7c3aed"},
		{Name: "Chemistry", Instructor: "Dr. Rao", Icon: "flask", Color: "#059669"},
		{Name: "Biology", Instructor: "Ms. Das", Icon: "leaf", Color: "#16a34a"},
		{Name: "English", Instructor: "Mr. Khan", Icon: "book", Color: "#d97706"},
		{Name: "Computer Science", Instructor: "Mrs. Menon", Icon: "cpu", Color: "#0891b2"},
	}

	for i := range seeds {
		if err := subjectRepo.Create(ctx, &seeds[i]); err != nil {
			log.Fatal().Err(err).Str("name", seeds[i].Name).Msg("Failed to seed subject")
		}
		fmt.Printf("Created subject %q (id %d)\n", seeds[i].Name, seeds[i].ID)
	}

	fmt.Printf("\nSeeded %d subjects\n", len(seeds))
}
