package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	DefaultRawPhotosSubDir     = "raw_photos"
	DefaultResizedPhotosSubDir = "resized_photos"
)

const (
	defaultJobQueueSize       = 200
	defaultNumWorkers         = 4
	defaultJpegQuality        = 90
	defaultConsistencyMinutes = 30
	defaultPublishMinutes     = 1
)

type Config struct {
	// database path
	DatabasePath string

	// media storage configuration
	MediaStoragePath string // primary root for all photo files
	RawPhotosPath    string // full-calculated path for originals
	ResizedPhotosPath string // full-calculated path for derived images

	RawPhotosSubDir     string
	ResizedPhotosSubDir string

	// derived image encoding
	JpegQuality int

	// worker settings
	JobQueueSize int
	NumWorkers   int

	// background sweep intervals
	ConsistencyInterval time.Duration
	PublishInterval     time.Duration

	// bootstrap API key (plaintext, hashed into the DB at startup)
	BootstrapAPIKey string

	// HTTP
	Port string
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func LoadConfig() (Config, error) {
	dbPath := getEnvOrDefault("DATABASE_PATH", "photocms.db")

	mediaStorage := getEnvOrDefault("MEDIA_STORAGE_PATH", filepath.Join(".", "media_storage"))
	absMediaStorage, err := filepath.Abs(mediaStorage)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for media storage '%s': %w", mediaStorage, err)
	}

	rawSubDir := getEnvOrDefault("RAW_PHOTOS_SUBDIR", DefaultRawPhotosSubDir)
	absRawPath := filepath.Join(absMediaStorage, rawSubDir)

	resizedSubDir := getEnvOrDefault("RESIZED_PHOTOS_SUBDIR", DefaultResizedPhotosSubDir)
	absResizedPath := filepath.Join(absMediaStorage, resizedSubDir)

	jpegQuality := getEnvIntOrDefault("JPEG_QUALITY", defaultJpegQuality)
	if jpegQuality > 100 {
		log.Printf("Warning: JPEG_QUALITY %d out of range, using %d", jpegQuality, defaultJpegQuality)
		jpegQuality = defaultJpegQuality
	}

	queueSize := getEnvIntOrDefault("JOB_QUEUE_SIZE", defaultJobQueueSize)
	numWorkers := getEnvIntOrDefault("NUM_WORKERS", defaultNumWorkers)

	consistencyMinutes := getEnvIntOrDefault("CONSISTENCY_SWEEP_MINUTES", defaultConsistencyMinutes)
	publishMinutes := getEnvIntOrDefault("PUBLISH_SWEEP_MINUTES", defaultPublishMinutes)

	cfg := Config{
		DatabasePath:        dbPath,
		MediaStoragePath:    absMediaStorage,
		RawPhotosPath:       absRawPath,
		ResizedPhotosPath:   absResizedPath,
		RawPhotosSubDir:     rawSubDir,
		ResizedPhotosSubDir: resizedSubDir,
		JpegQuality:         jpegQuality,
		JobQueueSize:        queueSize,
		NumWorkers:          numWorkers,
		ConsistencyInterval: time.Duration(consistencyMinutes) * time.Minute,
		PublishInterval:     time.Duration(publishMinutes) * time.Minute,
		BootstrapAPIKey:     os.Getenv("BOOTSTRAP_API_KEY"),
		Port:                getEnvOrDefault("PORT", "8080"),
	}

	return cfg, nil
}
