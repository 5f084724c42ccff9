package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// PostsPerPage is the listing page size used when POSTS_PER_PAGE is unset.
const PostsPerPage = 10

// Config holds environment driven configuration values.
type Config struct {
	Port    string
	GinMode string
	SiteURL string // absolute base for feeds and the sitemap

	DBDriver    string // postgres, mysql or sqlite
	DatabaseURL string

	SessionSecret string
	PostsPerPage  int

	MediaBackend       string // local, s3 or gcs
	MediaRoot          string
	MediaURL           string
	S3Region           string
	S3Bucket           string
	GCSBucket          string
	GCSCredentialsFile string

	GroupsFile         string
	RateLimitPerMinute int
	TrustedProxies     []string // proxies allowed to set X-Forwarded-For; empty trusts none

	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

// Load reads .env (when present) and the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("port", "8080")
	v.SetDefault("gin_mode", "release")
	v.SetDefault("site_url", "http://localhost:8080")
	v.SetDefault("db_driver", "postgres")
	v.SetDefault("database_url", "host=localhost user=postgres password=postgres dbname=yatube port=5432 sslmode=disable TimeZone=UTC")
	v.SetDefault("session_secret", "secret_key_change_me")
	v.SetDefault("posts_per_page", PostsPerPage)
	v.SetDefault("media_backend", "local")
	v.SetDefault("media_root", "./media")
	v.SetDefault("media_url", "/media/")
	v.SetDefault("rate_limit_per_minute", 20)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_max_size_mb", 100)
	v.SetDefault("log_max_backups", 3)
	v.SetDefault("log_max_age_days", 7)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) Config {
	cfg := Config{
		Port:               v.GetString("port"),
		GinMode:            v.GetString("gin_mode"),
		SiteURL:            strings.TrimSuffix(v.GetString("site_url"), "/"),
		DBDriver:           strings.ToLower(v.GetString("db_driver")),
		DatabaseURL:        v.GetString("database_url"),
		SessionSecret:      v.GetString("session_secret"),
		PostsPerPage:       v.GetInt("posts_per_page"),
		MediaBackend:       strings.ToLower(v.GetString("media_backend")),
		MediaRoot:          v.GetString("media_root"),
		MediaURL:           v.GetString("media_url"),
		S3Region:           v.GetString("s3_region"),
		S3Bucket:           v.GetString("s3_bucket"),
		GCSBucket:          v.GetString("gcs_bucket"),
		GCSCredentialsFile: v.GetString("gcs_credentials_file"),
		GroupsFile:         v.GetString("groups_file"),
		RateLimitPerMinute: v.GetInt("rate_limit_per_minute"),
		TrustedProxies:     splitList(v.GetString("trusted_proxies")),
		LogLevel:           v.GetString("log_level"),
		LogPath:            v.GetString("log_path"),
		LogMaxSizeMB:       v.GetInt("log_max_size_mb"),
		LogMaxBackups:      v.GetInt("log_max_backups"),
		LogMaxAgeDays:      v.GetInt("log_max_age_days"),
		LogCompress:        v.GetBool("log_compress"),
	}
	if cfg.PostsPerPage <= 0 {
		cfg.PostsPerPage = PostsPerPage
	}
	if !strings.HasSuffix(cfg.MediaURL, "/") {
		cfg.MediaURL += "/"
	}
	return cfg
}

// splitList parses a comma separated env value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
