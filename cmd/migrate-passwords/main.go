// One-off migration: hash any plaintext passwords left in the account
// tables. Safe to re-run; bcrypt hashes are detected and skipped.
package main

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"procurement-receipt-api/config"
	"procurement-receipt-api/models"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	config.InitDB()

	migrateTable(models.Vendor{}.TableName())
	migrateTable(models.Inspector{}.TableName())
	migrateTable(models.Executive{}.TableName())

	log.Println("Password migration completed")
}

type account struct {
	ID       int
	Email    string
	Password string
}

func migrateTable(table string) {
	var accounts []account
	if err := config.DB.Table(table).Select("id, email, password").Scan(&accounts).Error; err != nil {
		log.Fatalf("Failed to fetch %s: %v", table, err)
	}

	for _, a := range accounts {
		// bcrypt hashes start with $2
		if strings.HasPrefix(a.Password, "$2") {
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("Failed to hash password for %s (%s): %v", a.Email, table, err)
			continue
		}

		if err := config.DB.Table(table).Where("id = ?", a.ID).
			Update("password", string(hash)).Error; err != nil {
			log.Printf("Failed to update password for %s (%s): %v", a.Email, table, err)
			continue
		}
		log.Printf("Hashed password for %s (%s)", a.Email, table)
	}
}
