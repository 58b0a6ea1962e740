package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/examdesk/examdesk-backend/internal/config"
	"github.com/examdesk/examdesk-backend/internal/database"
	"github.com/examdesk/examdesk-backend/internal/logger"
	"github.com/examdesk/examdesk-backend/internal/model"
	"github.com/examdesk/examdesk-backend/internal/repository"
	"github.com/examdesk/examdesk-backend/internal/service"
)

func main() {
	var (
		team     = flag.String("team", "quality-control", "Team to seed examinees into")
		count    = flag.Int("count", 50, "Number of examinee accounts to create")
		password = flag.String("password", "changeme123", "Initial password for every seeded account")
	)
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	accountRepo := repository.NewAccountRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	questionService := service.NewQuestionService(questionRepo, log)

	fmt.Printf("=== Seeding %d Examinees into team %q ===\n", *count, *team)

	// One hash shared by every seeded account keeps the seed fast even
	// at the default bcrypt cost.
	hashed, err := bcrypt.GenerateFromPassword([]byte(*password), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash seed password")
	}

	successCount := 0
	for i := 0; i < *count; i++ {
		account := &model.Account{
			EmployeeID:   fmt.Sprintf("EMP%05d", i+1),
			Name:         fmt.Sprintf("Examinee %02d", i+1),
			Role:         model.RoleExaminee,
			Team:         *team,
			Active:       true,
			PasswordHash: string(hashed),
		}

		if err := accountRepo.Create(ctx, account); err != nil {
			fmt.Printf("Error creating account %s: %v\n", account.EmployeeID, err)
			continue
		}

		successCount++
		if (i+1)%10 == 0 {
			fmt.Printf("Created %d accounts...\n", i+1)
		}
	}

	fmt.Printf("Seed completed! Successfully added %d/%d examinees.\n", successCount, *count)

	// A small demo bank so a seeded examinee can start an attempt right away.
	fmt.Println("=== Seeding demo question bank ===")

	questionCount := 0
	for i := 0; i < 25; i++ {
		q := &model.Question{
			Team:    *team,
			Content: fmt.Sprintf("Demo question %d: which choice is marked correct?", i+1),
			Choices: []string{
				"First choice",
				"Second choice",
				"Third choice",
				"Fourth choice",
			},
			CorrectIndex: i % 4,
			Points:       1 + i%3,
			Active:       true,
		}

		if err := questionService.Create(ctx, q); err != nil {
			fmt.Printf("Error creating question %d: %v\n", i+1, err)
			continue
		}
		questionCount++
	}

	fmt.Printf("Seed completed! Successfully added %d/25 questions.\n", questionCount)
}
