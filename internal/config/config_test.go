package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	cfg := FromViper(newViper())

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, PostsPerPage, cfg.PostsPerPage)
	assert.Equal(t, "local", cfg.MediaBackend)
	assert.Equal(t, "/media/", cfg.MediaURL)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("POSTS_PER_PAGE", "25")
	t.Setenv("MEDIA_URL", "/uploads")

	cfg := FromViper(newViper())

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 25, cfg.PostsPerPage)
	assert.Equal(t, "/uploads/", cfg.MediaURL)
}

func TestInvalidPageSizeFallsBack(t *testing.T) {
	v := viper.New()
	v.Set("posts_per_page", -3)

	cfg := FromViper(v)

	assert.Equal(t, PostsPerPage, cfg.PostsPerPage)
}

func TestSiteURLHasNoTrailingSlash(t *testing.T) {
	t.Setenv("SITE_URL", "https://yatube.example/")
	cfg := FromViper(newViper())
	assert.Equal(t, "https://yatube.example", cfg.SiteURL)
}

func TestTrustedProxies(t *testing.T) {
	assert.Empty(t, FromViper(newViper()).TrustedProxies)

	t.Setenv("TRUSTED_PROXIES", " 10.0.0.1, 192.168.0.0/16 ,,")
	cfg := FromViper(newViper())
	assert.Equal(t, []string{"10.0.0.1", "192.168.0.0/16"}, cfg.TrustedProxies)
}
