package db

import (
	"idea-review-platform/internal/domain"
	"idea-review-platform/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

// Migrate runs database migrations
func Migrate() {
	err := AppDb.AutoMigrate(
		&domain.User{},
		&domain.UserRole{},
		&domain.Idea{},
		&domain.Review{},
		&domain.Decision{},
		&domain.CollaborationRequest{},
		&domain.CollaborationProposal{},
		&domain.IdeaVersion{},
	)

	if err != nil {
		logger.Log.Fatal().Err(err).Msg("migration failed")
	}

	logger.Log.Info().Msg("Database schema migrated successfully")
}

// SeedData seeds the database with initial data (for development only)
func SeedData() {
	seedUser("Deputy Director", "dd@example.com", domain.RoleDD)
	seedUser("SME Reviewer", "sme@example.com", domain.RoleSME)
	seedUser("Board Member", "board@example.com", domain.RoleBoard)
}

func seedUser(name, email, role string) {
	var existing domain.User
	if err := AppDb.Where("email = ?", email).First(&existing).Error; err == nil {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Error().Err(err).Msg("seed hash failed")
		return
	}

	user := domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := AppDb.Create(&user).Error; err != nil {
		logger.Log.Error().Err(err).Str("email", email).Msg("seed user failed")
		return
	}
	if err := AppDb.Create(&domain.UserRole{UserID: user.ID, Role: role}).Error; err != nil {
		logger.Log.Error().Err(err).Str("role", role).Msg("seed role failed")
		return
	}
	logger.Log.Info().Str("email", email).Str("role", role).Msg("seeded user")
}
