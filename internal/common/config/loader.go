package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")
	bindEnv(v)

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // env overlay is optional

	return finish(v)
}

func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func bindEnv(v *viper.Viper) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// DefaultBulletTiers is the four-tier table used when no overrides are configured.
func DefaultBulletTiers() BulletTierConfig {
	return BulletTierConfig{
		DenseMinCount:     5,
		DenseMinAvgLength: 25,
		ManyMinCount:      5,
		ModerateMinCount:  4,
		Dense:             TierConfig{PrimarySize: 21, SecondarySize: 19, PrimarySpacing: 12, SecondarySpacing: 10, LineSpacing: 1.25},
		Many:              TierConfig{PrimarySize: 22, SecondarySize: 20, PrimarySpacing: 14, SecondarySpacing: 12, LineSpacing: 1.3},
		Moderate:          TierConfig{PrimarySize: 23, SecondarySize: 21, PrimarySpacing: 16, SecondarySpacing: 14, LineSpacing: 1.35},
		Few:               TierConfig{PrimarySize: 24, SecondarySize: 22, PrimarySpacing: 18, SecondarySpacing: 16, LineSpacing: 1.4},
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "slide-composer"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}

	// Composer defaults
	if cfg.Composer.DefaultSlideType == "" {
		cfg.Composer.DefaultSlideType = "text_content"
	}
	if cfg.Composer.OutputFormat == "" {
		cfg.Composer.OutputFormat = "markup"
	}
	if cfg.Composer.DocumentTitle == "" {
		cfg.Composer.DocumentTitle = "Presentation"
	}
	if cfg.Composer.Canvas.Width == 0 {
		cfg.Composer.Canvas.Width = 10.0
	}
	if cfg.Composer.Canvas.Height == 0 {
		cfg.Composer.Canvas.Height = 7.5
	}
	ApplyTierDefaults(&cfg.Composer.BulletTiers)

	// Store defaults
	if cfg.Store.Kind == "" {
		cfg.Store.Kind = "file"
	}
	if cfg.Store.OutputDir == "" {
		cfg.Store.OutputDir = "output"
	}
	if cfg.Store.KeyPrefix == "" {
		cfg.Store.KeyPrefix = "slide-composer"
	}
	if cfg.Store.TTL == 0 {
		cfg.Store.TTL = 86400
	}

	// Camunda defaults
	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
}

// ApplyTierDefaults backfills every zero field of t from DefaultBulletTiers,
// so a partial override keeps the remaining default sizes.
func ApplyTierDefaults(t *BulletTierConfig) {
	d := DefaultBulletTiers()
	if t.DenseMinCount == 0 {
		t.DenseMinCount = d.DenseMinCount
	}
	if t.DenseMinAvgLength == 0 {
		t.DenseMinAvgLength = d.DenseMinAvgLength
	}
	if t.ManyMinCount == 0 {
		t.ManyMinCount = d.ManyMinCount
	}
	if t.ModerateMinCount == 0 {
		t.ModerateMinCount = d.ModerateMinCount
	}
	applyTier(&t.Dense, d.Dense)
	applyTier(&t.Many, d.Many)
	applyTier(&t.Moderate, d.Moderate)
	applyTier(&t.Few, d.Few)
}

func applyTier(t *TierConfig, d TierConfig) {
	if t.PrimarySize == 0 {
		t.PrimarySize = d.PrimarySize
	}
	if t.SecondarySize == 0 {
		t.SecondarySize = d.SecondarySize
	}
	if t.PrimarySpacing == 0 {
		t.PrimarySpacing = d.PrimarySpacing
	}
	if t.SecondarySpacing == 0 {
		t.SecondarySpacing = d.SecondarySpacing
	}
	if t.LineSpacing == 0 {
		t.LineSpacing = d.LineSpacing
	}
}

func validateConfig(cfg *Config) error {
	switch cfg.Composer.OutputFormat {
	case "markup", "deck", "both":
	default:
		return fmt.Errorf("composer.output_format must be markup, deck or both, got %q", cfg.Composer.OutputFormat)
	}

	if cfg.Composer.Canvas.Width < 0 || cfg.Composer.Canvas.Height < 0 {
		return fmt.Errorf("composer.canvas dimensions must be positive")
	}

	tiers := cfg.Composer.BulletTiers
	if tiers.ModerateMinCount > tiers.ManyMinCount {
		return fmt.Errorf("bullet_tiers.moderate_min_count (%d) exceeds many_min_count (%d)",
			tiers.ModerateMinCount, tiers.ManyMinCount)
	}
	for _, tier := range []struct {
		name string
		cfg  TierConfig
	}{
		{"dense", tiers.Dense},
		{"many", tiers.Many},
		{"moderate", tiers.Moderate},
		{"few", tiers.Few},
	} {
		if tier.cfg.PrimarySize <= 0 || tier.cfg.SecondarySize <= 0 {
			return fmt.Errorf("bullet_tiers.%s sizes must be positive", tier.name)
		}
		if tier.cfg.SecondarySize >= tier.cfg.PrimarySize {
			return fmt.Errorf("bullet_tiers.%s.secondary_size (%g) must be below primary_size (%g)",
				tier.name, tier.cfg.SecondarySize, tier.cfg.PrimarySize)
		}
		if tier.cfg.PrimarySpacing < 0 || tier.cfg.SecondarySpacing < 0 || tier.cfg.LineSpacing < 0 {
			return fmt.Errorf("bullet_tiers.%s spacing must not be negative", tier.name)
		}
	}

	switch cfg.Store.Kind {
	case "file":
	case "redis":
		if cfg.Database.Redis.Address == "" {
			return fmt.Errorf("database.redis.address is required when store.kind is redis")
		}
	default:
		return fmt.Errorf("store.kind must be file or redis, got %q", cfg.Store.Kind)
	}

	for name, w := range cfg.Workers {
		if w.Enabled && cfg.Camunda.BrokerAddress == "" {
			return fmt.Errorf("camunda.broker_address is required when worker %s is enabled", name)
		}
	}

	return nil
}
