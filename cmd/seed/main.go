package main

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"time"

	"factorylink/internal/config"
	"factorylink/internal/database"
	"factorylink/internal/domain"
	"factorylink/internal/logger"
	"factorylink/internal/service"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Development seeder. Wipes the catalog tables child-first, then loads a
// known admin account, a handful of users, and a catalog of categories,
// factories, products, and pictures.
func main() {
	// .env is optional; real environments set variables directly
	_ = godotenv.Load()

	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	dbService := database.New()
	db := dbService.DB()
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	log.Info("Cleaning existing data")
	for _, table := range []string{"pictures", "products", "factories", "categories", "users"} {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			log.Fatal("Failed to clean table", zap.String("table", table), zap.Error(err))
		}
	}

	log.Info("Seeding users")
	if err := seedUsers(ctx, db); err != nil {
		log.Fatal("Failed to seed users", zap.Error(err))
	}

	log.Info("Seeding catalog")
	if err := seedCatalog(ctx, db); err != nil {
		log.Fatal("Failed to seed catalog", zap.Error(err))
	}

	log.Info("Seed completed successfully")
}

func seedUsers(ctx context.Context, db *sql.DB) error {
	users := []struct {
		name, email, password, phone, country string
		isAdmin                               bool
	}{
		{"Admin", "admin@factorylink.dev", "admin12345", "+6281200000001", "Indonesia", true},
		{"Sari Wijaya", "sari@example.com", "password123", "+6281200000002", "Indonesia", false},
		{"Budi Santoso", "budi@example.com", "password123", "+6281200000003", "Indonesia", false},
		{"Mei Lin", "mei@example.com", "password123", "+8613900000004", "China", false},
	}

	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), service.BcryptCost)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", u.email, err)
		}

		_, err = db.ExecContext(ctx, `
			INSERT INTO users (name, email, password_hash, phone, country, is_admin)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			u.name, u.email, string(hash), u.phone, u.country, u.isAdmin)
		if err != nil {
			return fmt.Errorf("failed to insert user %s: %w", u.email, err)
		}
	}

	return nil
}

func seedCatalog(ctx context.Context, db *sql.DB) error {
	// Fixed seed keeps the generated catalog stable across runs
	rng := rand.New(rand.NewSource(42))

	categories := []string{"Textiles", "Electronics", "Furniture", "Toys"}
	locations := []string{"Bandung", "Surabaya", "Semarang", "Tangerang", "Medan"}

	for _, categoryName := range categories {
		var categoryID int64
		err := db.QueryRowContext(ctx,
			"INSERT INTO categories (name) VALUES ($1) RETURNING id",
			categoryName).Scan(&categoryID)
		if err != nil {
			return fmt.Errorf("failed to insert category %s: %w", categoryName, err)
		}

		for i := 1; i <= 3; i++ {
			name := fmt.Sprintf("%s Works %d", categoryName, i)
			location := locations[rng.Intn(len(locations))]
			status := domain.FactoryStatusActive
			if rng.Intn(5) == 0 {
				status = domain.FactoryStatusInactive
			}

			var factoryID int64
			err := db.QueryRowContext(ctx, `
				INSERT INTO factories (
					name, location, address, phone, email,
					certification, production_capacity, description,
					recommended_reason, video_link, main_image, status, category_id
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
				RETURNING id`,
				name,
				location,
				fmt.Sprintf("Jl. Industri No. %d, %s", rng.Intn(200)+1, location),
				fmt.Sprintf("+62812%07d", rng.Intn(10000000)),
				fmt.Sprintf("contact%d@%sworks.example.com", i, categoryName),
				"ISO 9001",
				fmt.Sprintf("%d units/month", (rng.Intn(40)+10)*500),
				fmt.Sprintf("%s manufacturer based in %s.", categoryName, location),
				"Reliable partner with consistent delivery record.",
				"",
				fmt.Sprintf("https://picsum.photos/seed/%s-%d/800/600", categoryName, i),
				status,
				categoryID,
			).Scan(&factoryID)
			if err != nil {
				return fmt.Errorf("failed to insert factory %s: %w", name, err)
			}

			productCount := rng.Intn(5) + 1
			for p := 1; p <= productCount; p++ {
				price := float64(rng.Intn(9000)+1000) / 100
				_, err := db.ExecContext(ctx,
					"INSERT INTO products (name, price, factory_id) VALUES ($1, $2, $3)",
					fmt.Sprintf("%s Product %d", name, p), price, factoryID)
				if err != nil {
					return fmt.Errorf("failed to insert product for %s: %w", name, err)
				}
			}

			pictureCount := rng.Intn(3) + 1
			for pic := 1; pic <= pictureCount; pic++ {
				_, err := db.ExecContext(ctx,
					"INSERT INTO pictures (url, factory_id) VALUES ($1, $2)",
					fmt.Sprintf("https://picsum.photos/seed/%s-%d-%d/1024/768", categoryName, i, pic),
					factoryID)
				if err != nil {
					return fmt.Errorf("failed to insert picture for %s: %w", name, err)
				}
			}
		}
	}

	return nil
}
