package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"karaoke/internal/auth"
	"karaoke/internal/cache"
	"karaoke/internal/config"
	"karaoke/internal/db"
	"karaoke/internal/model"
	"karaoke/internal/repository"
	"karaoke/internal/service"
	"karaoke/internal/storage"
)

// SeedSongData represents one row of the catalog file.
type SeedSongData struct {
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Genre      string `json:"genre"`
	FileURL    string `json:"file_url"`
	FileFormat string `json:"file_format"`
	Duration   int    `json:"duration"`
}

func main() {
	log.Println("Starting seed script...")

	// Load configuration
	cfg := config.Load()

	// Connect to database
	gormDB, err := db.Open(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := db.Migrate(gormDB, false); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()

	adminRepo := repository.NewAdminRepository(gormDB)
	tableRepo := repository.NewTableRepository(gormDB)
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.SessionTokenTTL())
	authService := service.NewAuthService(adminRepo, tableRepo, jwtService, auth.NewTokenStore(cache.NewMemory(time.Minute)), cfg.BcryptCost, service.SystemClock)

	if cfg.AdminLogin != "" && cfg.AdminPassword != "" {
		admin, err := authService.UpsertAdmin(ctx, cfg.AdminLogin, cfg.AdminPassword)
		if err != nil {
			log.Fatalf("Failed to seed admin: %v", err)
		}
		log.Printf("Admin %q ready (id %d)", admin.Login, admin.ID)
	} else {
		log.Println("ADMIN_LOGIN/ADMIN_PASSWORD not set, skipping admin")
	}

	source := os.Getenv("SEED_SONGS_PATH")
	if source == "" {
		log.Println("SEED_SONGS_PATH not set, skipping song catalog")
		return
	}

	log.Printf("Loading songs from: %s", source)
	rows, err := loadSongs(source)
	if err != nil {
		log.Fatalf("Failed to load songs: %v", err)
	}
	log.Printf("Loaded %d songs", len(rows))

	mediaStore, err := storage.New(&cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to init storage: %v", err)
	}
	songService := service.NewSongService(repository.NewSongRepository(gormDB), mediaStore, cache.NewMemory(time.Minute), cfg.CatalogCacheTTL)

	songs := make([]model.Song, 0, len(rows))
	for _, row := range rows {
		songs = append(songs, model.Song{
			Title:      row.Title,
			Artist:     row.Artist,
			Genre:      row.Genre,
			FileURL:    row.FileURL,
			FileFormat: row.FileFormat,
			Duration:   row.Duration,
		})
	}

	imported, err := songService.Import(ctx, songs)
	if err != nil {
		log.Fatalf("Failed to import songs: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - Songs imported: %d", imported)
	log.Printf("  - Rows skipped: %d", len(rows)-imported)
}

// loadSongs reads the catalog from a local file or an http(s) URL.
func loadSongs(source string) ([]SeedSongData, error) {
	var body []byte
	var err error
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		body, err = fetchFromAPI(source)
	} else {
		body, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, err
	}

	var songs []SeedSongData
	if err := json.Unmarshal(body, &songs); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return songs, nil
}

func fetchFromAPI(url string) ([]byte, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}
