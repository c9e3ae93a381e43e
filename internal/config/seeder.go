package config

import (
	"errors"
	"log"

	"punebus-backend/internal/adapters/persistence/models"
	"punebus-backend/internal/core/domain"
	"punebus-backend/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db  *gorm.DB
	cfg SeedConfig
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, cfg SeedConfig) *Seeder {
	return &Seeder{db: db, cfg: cfg}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser creates the first admin from SEED_ADMIN_* when no admin exists.
// Staff roles cannot self-register, so this is the only bootstrap path.
func (s *Seeder) seedAdminUser() error {
	var count int64
	if err := s.db.Model(&models.User{}).Where("role = ?", string(domain.RoleAdmin)).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if s.cfg.AdminEmail == "" || s.cfg.AdminPassword == "" {
		log.Println("⚠️ No admin exists and SEED_ADMIN_EMAIL / SEED_ADMIN_PASSWORD are not set")
		return nil
	}
	if !password.ValidatePassword(s.cfg.AdminPassword) {
		return errors.New("SEED_ADMIN_PASSWORD is too short")
	}

	hashedPassword, err := password.Hash(s.cfg.AdminPassword)
	if err != nil {
		return err
	}

	email := s.cfg.AdminEmail
	admin := &models.User{
		Name:     s.cfg.AdminName,
		Email:    &email,
		Password: hashedPassword,
		Role:     string(domain.RoleAdmin),
		IsActive: true,
	}
	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", email)
	return nil
}
