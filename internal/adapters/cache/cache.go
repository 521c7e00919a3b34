// Package cache stores matchmaker results keyed by prompt.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache defines the interface for caching.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Key derives a cache key from the model and the normalized prompt.
// Prompts differing only in case or surrounding/inner whitespace share a key.
func Key(model, prompt string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(prompt)), " ")
	hash := sha256.Sum256([]byte(model + "\x00" + normalized))
	return "payscout:v1:match:" + hex.EncodeToString(hash[:])
}
