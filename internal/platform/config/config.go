package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Store backends.
const (
	StoreMemory    = "memory"
	StoreFirestore = "firestore"
)

// Config holds runtime configuration loaded from environment variables.
type Config struct {
	Port                  string
	GinMode               string
	AllowedOrigins        string
	StoreBackend          string
	FirebaseProjectID     string
	FirebaseCredsBase64   string
	FirebaseCredsFile     string
	// FirestoreEmulatorHost is also read by the Firestore SDK itself.
	FirestoreEmulatorHost string
	DatasetSource         string
	LoadOnStart           bool
	SectorMatch           string
	MaxUploadMB           int
	LogLevel              string
	LogFormat             string
	UploadHistoryLimit    int
}

// Load reads environment variables into a Config with sensible defaults.
func Load() (Config, error) {
	cfg := Config{
		Port:                  getEnv("PORT", "8080"),
		GinMode:               getEnv("GIN_MODE", "release"),
		AllowedOrigins:        strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")),
		StoreBackend:          strings.ToLower(getEnv("STORE_BACKEND", StoreMemory)),
		FirebaseProjectID:     strings.TrimSpace(os.Getenv("FIREBASE_PROJECT_ID")),
		FirebaseCredsBase64:   strings.TrimSpace(os.Getenv("FIREBASE_CREDS_BASE64")),
		FirebaseCredsFile:     strings.TrimSpace(os.Getenv("FIREBASE_CREDS_FILE")),
		FirestoreEmulatorHost: strings.TrimSpace(os.Getenv("FIRESTORE_EMULATOR_HOST")),
		DatasetSource:         getEnv("DATASET_SOURCE", "data/Gerencial_QOE.xlsx"),
		SectorMatch:           strings.ToLower(getEnv("SECTOR_MATCH", "exact")),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "json"),
	}

	var err error
	if cfg.LoadOnStart, err = parseBoolEnv("LOAD_ON_START", true); err != nil {
		return Config{}, fmt.Errorf("parse LOAD_ON_START: %w", err)
	}
	if cfg.MaxUploadMB, err = parseIntEnv("MAX_UPLOAD_MB", 32); err != nil {
		return Config{}, fmt.Errorf("parse MAX_UPLOAD_MB: %w", err)
	}
	if cfg.UploadHistoryLimit, err = parseIntEnv("UPLOAD_HISTORY_LIMIT", 50); err != nil {
		return Config{}, fmt.Errorf("parse UPLOAD_HISTORY_LIMIT: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate ensures required fields are present. Firestore credentials are
// only required for the firestore backend.
func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	switch c.StoreBackend {
	case StoreMemory:
	case StoreFirestore:
		if c.FirebaseProjectID == "" {
			return errors.New("FIREBASE_PROJECT_ID is required")
		}
		if c.FirestoreEmulatorHost == "" && c.FirebaseCredsBase64 == "" && c.FirebaseCredsFile == "" {
			return errors.New("provide FIREBASE_CREDS_BASE64 or FIREBASE_CREDS_FILE for Firestore auth")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be %s or %s, got %q", StoreMemory, StoreFirestore, c.StoreBackend)
	}
	if c.SectorMatch != "exact" && c.SectorMatch != "normalized" {
		return fmt.Errorf("SECTOR_MATCH must be exact or normalized, got %q", c.SectorMatch)
	}
	if c.MaxUploadMB <= 0 {
		return errors.New("MAX_UPLOAD_MB must be positive")
	}
	if c.UploadHistoryLimit <= 0 {
		return errors.New("UPLOAD_HISTORY_LIMIT must be positive")
	}
	return nil
}

// MaxUploadBytes is the upload size limit in bytes.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// FirebaseCredentialsJSON returns the service account JSON bytes and the source used.
func (c Config) FirebaseCredentialsJSON() ([]byte, string, error) {
	if c.FirebaseCredsBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(c.FirebaseCredsBase64)
		if err != nil {
			return nil, "base64", fmt.Errorf("decode FIREBASE_CREDS_BASE64: %w", err)
		}
		return decoded, "base64", nil
	}
	if c.FirebaseCredsFile != "" {
		data, err := os.ReadFile(c.FirebaseCredsFile)
		if err != nil {
			return nil, "file", fmt.Errorf("read FIREBASE_CREDS_FILE: %w", err)
		}
		return data, "file", nil
	}
	return nil, "", errors.New("no firebase credentials found")
}

func getEnv(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

func parseBoolEnv(key string, defaultVal bool) (bool, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return false, err
	}
	return parsed, nil
}

func parseIntEnv(key string, defaultVal int) (int, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(val)
}
