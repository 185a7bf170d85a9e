package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/dayplanner/internal/domain/entities"
	"github.com/taskmaster/dayplanner/internal/infrastructure/config"
	"github.com/taskmaster/dayplanner/internal/infrastructure/database"
	"github.com/taskmaster/dayplanner/internal/infrastructure/logger"
	"github.com/taskmaster/dayplanner/internal/ports"
)

// testDocumentRepository exercises the contract every backend must honor.
func testDocumentRepository(t *testing.T, repo ports.DocumentRepository) {
	ctx := context.Background()
	dev := fmt.Sprintf("repotest_docs_%s", t.Name())

	require.NoError(t, repo.Ping(ctx))

	body, err := repo.Get(ctx, entities.KindNotes, dev)
	require.NoError(t, err)
	assert.Nil(t, body)

	err = repo.Update(ctx, entities.KindNotes, dev, func(current []byte) ([]byte, error) {
		assert.Nil(t, current)
		return []byte(`[{"id":1,"title":"a"}]`), nil
	})
	require.NoError(t, err)

	body, err = repo.Get(ctx, entities.KindNotes, dev)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"title":"a"}]`, string(body))

	other, err := repo.Get(ctx, entities.KindProjects, dev)
	require.NoError(t, err)
	assert.Nil(t, other, "kinds are stored separately")

	boom := errors.New("boom")
	err = repo.Update(ctx, entities.KindNotes, dev, func([]byte) ([]byte, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)

	body, err = repo.Get(ctx, entities.KindNotes, dev)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"title":"a"}]`, string(body), "failed update leaves the document alone")
}

func testConcurrentUpdates(t *testing.T, repo ports.DocumentRepository) {
	ctx := context.Background()
	dev := fmt.Sprintf("repotest_counter_%s", t.Name())

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Update(ctx, entities.KindPreferences, dev, func(current []byte) ([]byte, error) {
				n := 0
				if current != nil {
					n, _ = strconv.Atoi(string(current))
				}
				return []byte(strconv.Itoa(n + 1)), nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	body, err := repo.Get(ctx, entities.KindPreferences, dev)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(writers), string(body))
}

func TestFileDocumentRepository(t *testing.T) {
	repo, err := NewFileDocumentRepository(t.TempDir())
	require.NoError(t, err)

	testDocumentRepository(t, repo)
	testConcurrentUpdates(t, repo)
}

func TestFileDocumentRepository_FileLayout(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewFileDocumentRepository(dir)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, repo.Update(ctx, entities.KindPreferences, "default", func([]byte) ([]byte, error) {
		return []byte(`{"language":"ar"}`), nil
	}))

	content, err := os.ReadFile(filepath.Join(dir, "userPrefs.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"default":{"language":"ar"}}`, string(content))
}

func TestFileDocumentRepository_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tasks.json"), []byte("{not json"), 0o600))

	repo, err := NewFileDocumentRepository(dir)
	require.NoError(t, err)

	_, err = repo.Get(context.Background(), entities.KindTasks, "default")
	assert.Error(t, err)
}

func TestPostgresDocumentRepository(t *testing.T) {
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set")
	}
	port, _ := strconv.Atoi(os.Getenv("TEST_DB_PORT"))
	if port == 0 {
		port = 5432
	}

	db, err := database.New(context.Background(), config.DatabaseConfig{
		Host:         host,
		Port:         port,
		Name:         os.Getenv("TEST_DB_NAME"),
		User:         os.Getenv("TEST_DB_USER"),
		Password:     os.Getenv("TEST_DB_PASSWORD"),
		SSLMode:      "disable",
		MaxOpenConns: 10,
		MaxIdleConns: 2,
	}, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	migrator, err := database.NewMigrator(db)
	require.NoError(t, err)
	_, err = migrator.Up()
	require.NoError(t, err)

	clean := func() {
		_, _ = db.DB.Exec(`DELETE FROM device_documents WHERE device_id LIKE 'repotest_%'`)
	}
	clean()
	t.Cleanup(clean)

	repo := NewPostgresDocumentRepository(db)
	testDocumentRepository(t, repo)
	testConcurrentUpdates(t, repo)

	t.Run("ping reports missing schema", func(t *testing.T) {
		_, err := migrator.Down()
		require.NoError(t, err)
		t.Cleanup(func() { _, _ = migrator.Up() })

		assert.ErrorIs(t, repo.Ping(context.Background()), database.ErrNotMigrated)
	})
}

func TestRedisDocumentRepository(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })

	prefix := "dayplanner_test"
	clean := func() {
		ctx := context.Background()
		keys, _ := client.Keys(ctx, prefix+":*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
	}
	clean()
	t.Cleanup(clean)

	repo := NewRedisDocumentRepository(client, prefix)
	testDocumentRepository(t, repo)
	testConcurrentUpdates(t, repo)
}
