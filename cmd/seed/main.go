package main

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/clause"

	"accounts/internal/config"
	"accounts/internal/database"
	"accounts/internal/domain"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	// ================== SUPERUSER ==================
	log.Println("Creating superuser...")

	adminHash, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	admin := domain.User{
		UUID:         uuid.New(),
		Username:     "admin",
		Email:        "admin@example.com",
		PasswordHash: string(adminHash),
		IsActive:     true,
		IsStaff:      true,
		IsSuperuser:  true,
	}
	db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "password_hash", "is_active", "is_staff", "is_superuser"}),
	}).Create(&admin)
	log.Println("Superuser: admin@example.com / admin123")

	// ================== DEMO ACCOUNTS ==================
	log.Println("Creating demo accounts...")

	firstNames := []string{"Asel", "Bekzat", "Dina"}
	for i, name := range firstNames {
		hash, _ := bcrypt.GenerateFromPassword([]byte("demo1234"), bcrypt.DefaultCost)
		first := name
		phone := fmt.Sprintf("+770112345%02d", i+10)
		joined := time.Now().AddDate(0, -i, 0)

		user := domain.User{
			UUID:         uuid.New(),
			Username:     fmt.Sprintf("demo%d", i+1),
			Email:        fmt.Sprintf("demo%d@example.com", i+1),
			Phone:        &phone,
			FirstName:    &first,
			PasswordHash: string(hash),
			IsActive:     true,
			DateJoined:   joined,
		}
		db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "phone", "first_name", "password_hash", "is_active"}),
		}).Create(&user)
	}

	log.Println("Seed completed!")
	log.Println("Demo accounts: demo1@example.com ... demo3@example.com / demo1234")
}
