package config

import (
	"log"

	"assetdesk/internal/adapters/persistence/models"
	"assetdesk/internal/core/domain"
	"assetdesk/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}
	if err := s.seedMasters(); err != nil {
		log.Printf("⚠️ Master seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser seeds the default admin user
// This is for development/testing only
// In production, create admin through secure process
func (s *Seeder) seedAdminUser() error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", string(domain.RoleAdmin)).Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	admin := &models.User{
		Name:     "Administrator",
		Email:    "admin@assetdesk.local",
		Password: hashedPassword,
		Role:     string(domain.RoleAdmin),
		IsActive: true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Email)
	return nil
}

// seedMasters seeds a minimal set of master rows so a fresh install is usable
func (s *Seeder) seedMasters() error {
	var count int64
	s.db.Model(&models.Location{}).Count(&count)
	if count > 0 {
		return nil
	}

	locations := []models.Location{
		{Name: "Main Store", Description: "Central equipment store"},
		{Name: "IT Office", Description: "IT department office"},
	}
	if err := s.db.Create(&locations).Error; err != nil {
		return err
	}

	log.Printf("✅ Seeded %d default locations", len(locations))
	return nil
}
