package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  name: decks
composer:
  template_path: templates/corporate.json
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "decks", cfg.App.Name)
	assert.Equal(t, "templates/corporate.json", cfg.Composer.TemplatePath)
	assert.Equal(t, "text_content", cfg.Composer.DefaultSlideType)
	assert.Equal(t, "markup", cfg.Composer.OutputFormat)
	assert.Equal(t, 10.0, cfg.Composer.Canvas.Width)
	assert.Equal(t, 7.5, cfg.Composer.Canvas.Height)
	assert.Equal(t, DefaultBulletTiers(), cfg.Composer.BulletTiers)
	assert.Equal(t, "file", cfg.Store.Kind)
	assert.Equal(t, 86400, cfg.Store.TTL)
}

func TestLoadFromFile_TierOverride(t *testing.T) {
	path := writeConfig(t, `
composer:
  bullet_tiers:
    dense:
      primary_size: 20
      secondary_size: 18
      primary_spacing: 10
      secondary_spacing: 8
      line_spacing: 1.2
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 20.0, cfg.Composer.BulletTiers.Dense.PrimarySize)
	assert.Equal(t, 1.2, cfg.Composer.BulletTiers.Dense.LineSpacing)
	assert.Equal(t, DefaultBulletTiers().Few, cfg.Composer.BulletTiers.Few)
	assert.Equal(t, 5, cfg.Composer.BulletTiers.DenseMinCount)
}

func TestLoadFromFile_PartialTierOverride(t *testing.T) {
	path := writeConfig(t, `
composer:
  bullet_tiers:
    many_min_count: 6
    few:
      primary_size: 30
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	defaults := DefaultBulletTiers()
	few := cfg.Composer.BulletTiers.Few
	assert.Equal(t, 30.0, few.PrimarySize)
	assert.Equal(t, defaults.Few.SecondarySize, few.SecondarySize)
	assert.Equal(t, defaults.Few.PrimarySpacing, few.PrimarySpacing)
	assert.Equal(t, defaults.Few.SecondarySpacing, few.SecondarySpacing)
	assert.Equal(t, defaults.Few.LineSpacing, few.LineSpacing)
	assert.Equal(t, 6, cfg.Composer.BulletTiers.ManyMinCount)
	assert.Equal(t, defaults.ModerateMinCount, cfg.Composer.BulletTiers.ModerateMinCount)
	assert.Equal(t, defaults.Dense, cfg.Composer.BulletTiers.Dense)
}

func TestApplyTierDefaults_ZeroValue(t *testing.T) {
	var tiers BulletTierConfig
	ApplyTierDefaults(&tiers)
	assert.Equal(t, DefaultBulletTiers(), tiers)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "unknown output format",
			body: "composer:\n  output_format: pdf\n",
			want: "output_format",
		},
		{
			name: "redis store without address",
			body: "store:\n  kind: redis\n",
			want: "database.redis.address",
		},
		{
			name: "enabled worker without broker",
			body: "workers:\n  compose-deck:\n    enabled: true\n",
			want: "broker_address",
		},
		{
			name: "negative tier size",
			body: "composer:\n  bullet_tiers:\n    many:\n      primary_size: -4\n",
			want: "bullet_tiers.many sizes must be positive",
		},
		{
			name: "secondary size not below primary",
			body: "composer:\n  bullet_tiers:\n    few:\n      primary_size: 20\n      secondary_size: 20\n",
			want: "bullet_tiers.few.secondary_size",
		},
		{
			name: "secondary size above default primary",
			body: "composer:\n  bullet_tiers:\n    dense:\n      secondary_size: 30\n",
			want: "must be below primary_size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFromFile_ExpandsEnv(t *testing.T) {
	t.Setenv("DECK_TEMPLATE", "/srv/templates/brand.json")
	path := writeConfig(t, "composer:\n  template_path: ${DECK_TEMPLATE}\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/templates/brand.json", cfg.Composer.TemplatePath)
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
