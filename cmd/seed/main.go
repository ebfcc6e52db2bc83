package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/batikin/tailor-backend/internal/config"
	"github.com/batikin/tailor-backend/internal/db"
	"github.com/batikin/tailor-backend/internal/logging"
	"github.com/batikin/tailor-backend/internal/model"
	"github.com/batikin/tailor-backend/internal/repository"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var seedTags = []string{"casual", "formal", "traditional"}

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	ctx = logger.WithContext(ctx)

	conn, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := db.AutoMigrate(conn); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	users := repository.NewUserRepository(conn)
	for _, u := range seedUsers() {
		if err := ensureUser(ctx, users, u); err != nil {
			return err
		}
	}

	designs := repository.NewDesignRepository(conn)
	for _, name := range seedTags {
		if _, err := designs.EnsureTag(ctx, name); err != nil {
			return fmt.Errorf("tag %q: %w", name, err)
		}
	}
	logger.Info().Int("tags", len(seedTags)).Msg("seed complete")
	return nil
}

// ensureUser inserts u unless a user with the same id already exists.
func ensureUser(ctx context.Context, users repository.UserRepository, u *model.User) error {
	_, err := users.FindByID(ctx, u.UserID)
	if err == nil {
		zerolog.Ctx(ctx).Info().Str("user_id", u.UserID).Msg("user exists; skipping")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("find user %s: %w", u.UserID, err)
	}
	if err := users.Create(ctx, u); err != nil {
		return fmt.Errorf("insert user %s: %w", u.Username, err)
	}
	zerolog.Ctx(ctx).Info().Str("user_id", u.UserID).Str("role", string(u.Role)).Msg("user seeded")
	return nil
}

// seedUsers keys the sample accounts by Firebase UID, overridable per environment.
func seedUsers() []*model.User {
	customerID := envOr("SEED_CUSTOMER_UID", "seed-customer-1")
	tailorID := envOr("SEED_TAILOR_UID", "seed-tailor-1")
	bio := "Experienced tailor with 10 years of expertise."
	return []*model.User{
		{
			UserID:          customerID,
			Username:        "customer1",
			Email:           "customer1@example.com",
			Role:            model.RoleCustomer,
			FullName:        strPtr("John Customer"),
			Location:        strPtr("Jakarta"),
			Dialect:         strPtr("Indonesian"),
			RightArmLength:  floatPtr(60.5),
			ShoulderWidth:   floatPtr(45.0),
			LeftArmLength:   floatPtr(60.0),
			UpperBodyHeight: floatPtr(70.0),
			HipWidth:        floatPtr(40.0),
		},
		{
			UserID:          tailorID,
			Username:        "tailor1",
			Email:           "tailor1@example.com",
			Role:            model.RoleTailor,
			FullName:        strPtr("Jane Tailor"),
			Location:        strPtr("Surabaya"),
			Dialect:         strPtr("Javanese"),
			RightArmLength:  floatPtr(58.0),
			ShoulderWidth:   floatPtr(43.0),
			LeftArmLength:   floatPtr(57.5),
			UpperBodyHeight: floatPtr(68.0),
			HipWidth:        floatPtr(38.0),
			TailorDetails:   &model.TailorDetails{UserID: tailorID, Bio: &bio, Rating: 4.5},
		},
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }
