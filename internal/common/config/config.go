package config

type Config struct {
	App      AppConfig               `mapstructure:"app"`
	Logging  LoggingConfig           `mapstructure:"logging"`
	Composer ComposerConfig          `mapstructure:"composer"`
	Store    StoreConfig             `mapstructure:"store"`
	Database DatabaseConfig          `mapstructure:"database"`
	Camunda  CamundaConfig           `mapstructure:"camunda"`
	Workers  map[string]WorkerConfig `mapstructure:"workers"`
	Server   ServerConfig            `mapstructure:"server"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ComposerConfig struct {
	TemplatePath     string           `mapstructure:"template_path"` // empty selects the built-in definition
	SkeletonPath     string           `mapstructure:"skeleton_path"`
	DefaultSlideType string           `mapstructure:"default_slide_type"`
	OutputFormat     string           `mapstructure:"output_format"` // markup, deck or both
	DocumentTitle    string           `mapstructure:"document_title"`
	Canvas           CanvasConfig     `mapstructure:"canvas"`
	BulletTiers      BulletTierConfig `mapstructure:"bullet_tiers"`
}

// CanvasConfig is the fallback canvas size in inches.
type CanvasConfig struct {
	Width  float64 `mapstructure:"width"`
	Height float64 `mapstructure:"height"`
}

type BulletTierConfig struct {
	DenseMinCount     int        `mapstructure:"dense_min_count"`
	DenseMinAvgLength float64    `mapstructure:"dense_min_avg_length"`
	ManyMinCount      int        `mapstructure:"many_min_count"`
	ModerateMinCount  int        `mapstructure:"moderate_min_count"`
	Dense             TierConfig `mapstructure:"dense"`
	Many              TierConfig `mapstructure:"many"`
	Moderate          TierConfig `mapstructure:"moderate"`
	Few               TierConfig `mapstructure:"few"`
}

// TierConfig sizes are points, spacing is points after the paragraph.
type TierConfig struct {
	PrimarySize      float64 `mapstructure:"primary_size"`
	SecondarySize    float64 `mapstructure:"secondary_size"`
	PrimarySpacing   float64 `mapstructure:"primary_spacing"`
	SecondarySpacing float64 `mapstructure:"secondary_spacing"`
	LineSpacing      float64 `mapstructure:"line_spacing"`
}

type StoreConfig struct {
	Kind      string `mapstructure:"kind"` // file or redis
	OutputDir string `mapstructure:"output_dir"`
	KeyPrefix string `mapstructure:"key_prefix"`
	TTL       int    `mapstructure:"ttl"` // seconds
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"`
}

type ServerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
	// ImagesRoot is the only directory compose requests may reference images
	// from. Empty rejects requests that carry images.
	ImagesRoot string `mapstructure:"images_root"`
}
