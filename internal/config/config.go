package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"frontoffice/internal/domain"
)

type Config struct {
	Port                     string
	AllowedOrigin            string
	DatabaseURL              string
	RedisAddr                string
	RedisPassword            string
	RedisDB                  int
	AMQPURL                  string
	DefaultBranchID          string
	BranchesFile             string
	DashboardCacheTTLSeconds int
	AuthSecret               string
	AccessTokenTTLMinutes    int
	LoginAttemptsPerMinute   int
}

func Load() Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ALLOWED_ORIGIN", "http://127.0.0.1:3000")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("DEFAULT_BRANCH_ID", "anna-salai")
	v.SetDefault("DASHBOARD_CACHE_TTL_SECONDS", 30)
	v.SetDefault("ACCESS_TOKEN_TTL_MINUTES", 480)
	v.SetDefault("LOGIN_ATTEMPTS_PER_MINUTE", 10)

	cfg := Config{
		Port:                     v.GetString("PORT"),
		AllowedOrigin:            v.GetString("ALLOWED_ORIGIN"),
		DatabaseURL:              v.GetString("DATABASE_URL"),
		RedisAddr:                v.GetString("REDIS_ADDR"),
		RedisPassword:            v.GetString("REDIS_PASSWORD"),
		RedisDB:                  v.GetInt("REDIS_DB"),
		AMQPURL:                  v.GetString("AMQP_URL"),
		DefaultBranchID:          v.GetString("DEFAULT_BRANCH_ID"),
		BranchesFile:             strings.TrimSpace(v.GetString("BRANCHES_FILE")),
		DashboardCacheTTLSeconds: v.GetInt("DASHBOARD_CACHE_TTL_SECONDS"),
		AuthSecret:               strings.TrimSpace(v.GetString("AUTH_SECRET")),
		AccessTokenTTLMinutes:    v.GetInt("ACCESS_TOKEN_TTL_MINUTES"),
		LoginAttemptsPerMinute:   v.GetInt("LOGIN_ATTEMPTS_PER_MINUTE"),
	}
	if cfg.DashboardCacheTTLSeconds < 1 {
		cfg.DashboardCacheTTLSeconds = 30
	}
	if cfg.AccessTokenTTLMinutes < 1 {
		cfg.AccessTokenTTLMinutes = 480
	}
	if cfg.LoginAttemptsPerMinute < 1 {
		cfg.LoginAttemptsPerMinute = 10
	}

	return cfg
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

// LoadBranches reads a YAML or JSON file with a top-level "branches" list.
func LoadBranches(path string) ([]domain.Branch, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read branches file: %w", err)
	}

	var branches []domain.Branch
	if err := v.UnmarshalKey("branches", &branches); err != nil {
		return nil, fmt.Errorf("decode branches: %w", err)
	}
	if len(branches) == 0 {
		return nil, fmt.Errorf("branches file %s declares no branches", path)
	}
	return branches, nil
}
