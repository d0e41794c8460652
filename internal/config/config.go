package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/zhouzirui/talker-manager/backend/internal/store"
)

// tokenBytes yields a 16 character hex token.
const tokenBytes = 8

// Config aggregates the service configuration.
type Config struct {
	Server ServerConfig
	Auth   AuthConfig
	Store  store.Config
	Feed   FeedConfig
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	auth, err := loadAuthConfig()
	if err != nil {
		return nil, err
	}

	storeCfg, err := loadStoreConfig()
	if err != nil {
		return nil, err
	}

	feed, err := loadFeedConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Auth: auth, Store: storeCfg, Feed: feed}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr       string
	CORSOrigin string
}

// loadServerConfig parses the listen address.
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	origin := getEnvOrDefault("CORS_ORIGIN", "*")

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" as given.
		return ServerConfig{Addr: port, CORSOrigin: origin}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port, CORSOrigin: origin}, nil
}

// AuthConfig holds the static credential shared with authorized clients.
type AuthConfig struct {
	Token string
	// Generated is true when no AUTH_TOKEN was configured and Token was
	// created at startup.
	Generated bool
}

func loadAuthConfig() (AuthConfig, error) {
	if token := strings.TrimSpace(os.Getenv("AUTH_TOKEN")); token != "" {
		return AuthConfig{Token: token}, nil
	}

	token, err := generateToken()
	if err != nil {
		return AuthConfig{}, fmt.Errorf("generate auth token: %w", err)
	}
	return AuthConfig{Token: token, Generated: true}, nil
}

func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func loadStoreConfig() (store.Config, error) {
	driver := strings.ToLower(getEnvOrDefault("STORE_DRIVER", store.DriverFile))
	switch driver {
	case store.DriverFile, store.DriverBolt, store.DriverSQLite:
	default:
		return store.Config{}, fmt.Errorf("invalid STORE_DRIVER value %q", driver)
	}

	seed, err := parseBoolEnv("STORE_SEED", true)
	if err != nil {
		return store.Config{}, err
	}

	return store.Config{
		Driver: driver,
		Path:   getEnvOrDefault("STORE_PATH", store.DefaultPath(driver)),
		Seed:   seed,
	}, nil
}

// FeedConfig tunes the change feed.
type FeedConfig struct {
	Buffer int
}

func loadFeedConfig() (FeedConfig, error) {
	buffer := 16
	if override, err := parseOptionalIntEnv("FEED_BUFFER"); err != nil {
		return FeedConfig{}, err
	} else if override != nil {
		if *override < 1 {
			buffer = 1
		} else {
			buffer = *override
		}
	}
	return FeedConfig{Buffer: buffer}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
