package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/VasiliiKletkin/yatube-main/internal/config"
	"github.com/VasiliiKletkin/yatube-main/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestOpenSqliteAndSeed(t *testing.T) {
	cfg := config.Config{
		DBDriver:    "sqlite",
		DatabaseURL: filepath.Join(t.TempDir(), "test.db"),
		LogLevel:    "info",
	}
	gdb, err := Open(cfg)
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	seedFile := filepath.Join(t.TempDir(), "groups.yaml")
	require.NoError(t, os.WriteFile(seedFile, []byte(`
- title: Cats
  slug: cats
  description: Everything about cats
- title: Dogs
  slug: dogs
- title: Broken
  slug: "not a slug"
`), 0o644))

	s := store.New(gdb, nil)
	ctx := context.Background()

	created, err := SeedGroups(ctx, s, seedFile)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	again, err := SeedGroups(ctx, s, seedFile)
	require.NoError(t, err)
	assert.Zero(t, again)

	g, err := s.GroupBySlug(ctx, "cats")
	require.NoError(t, err)
	require.NotNil(t, g.Description)
	assert.Equal(t, "Everything about cats", *g.Description)
}

func TestSeedGroupsWithoutFile(t *testing.T) {
	n, err := SeedGroups(context.Background(), nil, "")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDialectorFor(t *testing.T) {
	for _, driver := range []string{"postgres", "mysql", "sqlite"} {
		d, err := dialectorFor(driver, "")
		require.NoError(t, err)
		assert.NotNil(t, d)
	}
	_, err := dialectorFor("oracle", "")
	assert.Error(t, err)
}

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, logger.Info, gormLogLevel("debug"))
	assert.Equal(t, logger.Warn, gormLogLevel("WARN"))
	assert.Equal(t, logger.Error, gormLogLevel("error"))
	assert.Equal(t, logger.Silent, gormLogLevel("info"))
}
