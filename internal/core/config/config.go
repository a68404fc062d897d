// Package config provides configuration management for facewire services.
//
// SourceConfig is the Go rendition of the platform's manifest-declared
// data-source metadata: supported types, update-period hints and the safe
// watch face allowlist live here instead of an XML manifest.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/facewire/facewire/internal/types"
)

// SourceConfig holds configuration for the complication source service.
type SourceConfig struct {
	Host        string
	Port        int
	ManagerAddr string

	// RequestTimeout is the asynchronous response budget.
	RequestTimeout time.Duration

	// APIVersion is the protocol revision to speak.
	APIVersion int32

	// SupportedTypes lists the complication types this source serves, by
	// canonical name.
	SupportedTypes []string

	// UpdatePeriod and ImmediatePeriod are scheduling hints for the
	// platform: how often to request updates normally and while the watch
	// face is visible.
	UpdatePeriod    time.Duration
	ImmediatePeriod time.Duration

	// SafeWatchFaces lists watch face identifiers trusted with SAFE-tier
	// data.
	SafeWatchFaces []string
}

// ManagerConfig holds configuration for the update manager service.
type ManagerConfig struct {
	Host string
	Port int
}

// DefaultSourceConfig returns configuration with default values.
func DefaultSourceConfig() *SourceConfig {
	return &SourceConfig{
		Host:            "0.0.0.0",
		Port:            50061,
		ManagerAddr:     "localhost:50062",
		RequestTimeout:  20 * time.Second,
		APIVersion:      2,
		SupportedTypes:  []string{"SHORT_TEXT"},
		UpdatePeriod:    10 * time.Minute,
		ImmediatePeriod: time.Second,
	}
}

// SupportedTypeSet parses SupportedTypes into a lookup set.
func (c *SourceConfig) SupportedTypeSet() (map[types.ComplicationType]bool, error) {
	set := make(map[types.ComplicationType]bool, len(c.SupportedTypes))
	for _, name := range c.SupportedTypes {
		t, err := types.ParseComplicationType(name)
		if err != nil {
			return nil, fmt.Errorf("supported_types: %w", err)
		}
		if t.Reserved() || t == types.TypeNoData {
			return nil, fmt.Errorf("supported_types: %s is not a servable type", t)
		}
		set[t] = true
	}
	return set, nil
}

// HMACSecrets extracts HMAC secrets from environment variables.
// Supports FW_HMAC_SECRET (single) and FW_HMAC_SECRET_N (rotation).
// Returns map of secret_id -> decoded secret bytes. Secrets are
// environment-only; config files carrying them are rejected at load.
func HMACSecrets() (map[string][]byte, error) {
	secrets := make(map[string][]byte)

	add := func(envKey, val string) error {
		secretID, decoded, err := parseHMACSecret(val)
		if err != nil {
			return fmt.Errorf("%s: %w", envKey, err)
		}
		if _, exists := secrets[secretID]; exists {
			return fmt.Errorf("duplicate secret_id %q across FW_HMAC_SECRET variables", secretID)
		}
		secrets[secretID] = decoded
		return nil
	}

	if val := os.Getenv("FW_HMAC_SECRET"); val != "" {
		if err := add("FW_HMAC_SECRET", val); err != nil {
			return nil, err
		}
	}

	// Numbered secrets enable rotation: old and new keys stay valid during
	// migration.
	for i := 1; ; i++ {
		key := fmt.Sprintf("FW_HMAC_SECRET_%d", i)
		val := os.Getenv(key)
		if val == "" {
			break
		}
		if err := add(key, val); err != nil {
			return nil, err
		}
	}

	return secrets, nil
}

// parseHMACSecret parses the <secret_id>:<base64_secret> format. Secret ID
// must be 32 hex chars (UUID without hyphens); the secret at least 32
// bytes.
func parseHMACSecret(envValue string) (secretID string, secret []byte, err error) {
	parts := strings.SplitN(strings.TrimSpace(envValue), ":", 2)
	if len(parts) != 2 {
		return "", nil, fmt.Errorf("format must be <secret_id>:<base64_secret>")
	}

	secretID = parts[0]
	if len(secretID) != 32 {
		return "", nil, fmt.Errorf("secret_id must be 32 hex chars")
	}
	for _, c := range secretID {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return "", nil, fmt.Errorf("secret_id must be hex chars only")
		}
	}

	secret, err = base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", nil, fmt.Errorf("invalid base64 encoding: %w", err)
	}
	if len(secret) < 32 {
		return "", nil, fmt.Errorf("secret must be at least 32 bytes, got %d", len(secret))
	}

	return secretID, secret, nil
}
