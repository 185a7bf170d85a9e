package device

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/dayplanner/internal/infrastructure/logger"
	"github.com/taskmaster/dayplanner/internal/testutil"
)

var idPattern = regexp.MustCompile(`^device_\d+_[0-9a-f]{9}$`)

func TestGenerate(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	id := Generate(now)

	assert.Regexp(t, idPattern, id)
	assert.Contains(t, id, "_1700000000123_")
	assert.NotEqual(t, id, Generate(now), "suffix is random")
}

func TestGetOrCreate_PersistsOnFirstUse(t *testing.T) {
	store := testutil.NewMockLocalStore()
	ctx := context.Background()

	id := GetOrCreate(ctx, store, logger.NewNop())
	assert.Regexp(t, idPattern, id)
	assert.Equal(t, id, store.Values[StorageKey])

	assert.Equal(t, id, GetOrCreate(ctx, store, logger.NewNop()), "stable across calls")
}

func TestGetOrCreate_ReusesStoredID(t *testing.T) {
	store := testutil.NewMockLocalStore()
	store.Values[StorageKey] = "device_1_abcdef012"

	assert.Equal(t, "device_1_abcdef012", GetOrCreate(context.Background(), store, logger.NewNop()))
}

func TestGetOrCreate_WriteFailureStillReturnsID(t *testing.T) {
	store := testutil.NewMockLocalStore()
	store.SetErr = errors.New("disk full")

	id := GetOrCreate(context.Background(), store, logger.NewNop())
	require.NotEmpty(t, id)
	assert.Regexp(t, idPattern, id)
	assert.Empty(t, store.Values)
}
