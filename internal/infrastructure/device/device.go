// Package device gives every installation a stable, self-assigned identity.
package device

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskmaster/dayplanner/internal/infrastructure/logger"
	"github.com/taskmaster/dayplanner/internal/ports"
)

// StorageKey is the local key holding the device id.
const StorageKey = "deviceId"

const suffixLength = 9

// GetOrCreate returns the stored device id, generating and persisting one on
// first use. A failed write is logged and the fresh id is still returned, so
// the next start may mint another one.
func GetOrCreate(ctx context.Context, store ports.KeyValueStore, log *logger.Logger) string {
	if id, ok := store.Get(ctx, StorageKey); ok && strings.TrimSpace(id) != "" {
		return id
	}

	id := Generate(time.Now())
	if err := store.Set(ctx, StorageKey, id); err != nil {
		log.Warnw("Failed to persist device id", "device_id", id, "error", err)
	} else {
		log.Infow("Generated device id", "device_id", id)
	}
	return id
}

// Generate builds an id of the form device_<unixMillis>_<suffix>.
func Generate(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:suffixLength]
	return fmt.Sprintf("device_%d_%s", now.UnixMilli(), suffix)
}
