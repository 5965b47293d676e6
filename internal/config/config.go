package config

import (
	"fmt"
	"math"
	"time"

	"github.com/OCAP2/chase/internal/geo"
	"github.com/OCAP2/chase/pkg/core"
	"github.com/spf13/viper"
)

// FileName is the config file looked up by Load.
const FileName = "chase.cfg.json"

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds settings for the in-memory SQLite backend
type SQLiteConfig struct {
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
	Path         string        `json:"path" mapstructure:"path"`
}

// WebSocketConfig holds settings for the streaming backend
type WebSocketConfig struct {
	URL    string `json:"url" mapstructure:"url"`
	Secret string `json:"secret" mapstructure:"secret"`
}

// StorageConfig selects and configures the event sink
type StorageConfig struct {
	Type      string          `json:"type" mapstructure:"type"`
	Memory    MemoryConfig    `json:"memory" mapstructure:"memory"`
	SQLite    SQLiteConfig    `json:"sqlite" mapstructure:"sqlite"`
	WebSocket WebSocketConfig `json:"websocket" mapstructure:"websocket"`
}

// BoundsConfig is the optional world rectangle entities are clamped to
type BoundsConfig struct {
	Enabled bool    `json:"enabled" mapstructure:"enabled"`
	MinX    float64 `json:"minX" mapstructure:"minX"`
	MinY    float64 `json:"minY" mapstructure:"minY"`
	MaxX    float64 `json:"maxX" mapstructure:"maxX"`
	MaxY    float64 `json:"maxY" mapstructure:"maxY"`
	// Background, when sized, replaces the min/max values.
	Background BackgroundConfig `json:"background" mapstructure:"background"`
}

// BackgroundConfig places the map's background image in world feet, top-left
// corner at (X, Y).
type BackgroundConfig struct {
	X      float64 `json:"x" mapstructure:"x"`
	Y      float64 `json:"y" mapstructure:"y"`
	Width  float64 `json:"width" mapstructure:"width"`
	Height float64 `json:"height" mapstructure:"height"`
}

// IsSet reports whether an image size was configured.
func (bg BackgroundConfig) IsSet() bool {
	return bg.Width != 0 || bg.Height != 0
}

// Bounds validates the rectangle. It returns nil when bounds are disabled.
func (b BoundsConfig) Bounds() (*geo.Bounds, error) {
	if !b.Enabled {
		return nil, nil
	}
	var (
		bounds geo.Bounds
		err    error
	)
	if bg := b.Background; bg.IsSet() {
		bounds, err = geo.BoundsFromImage(core.Position{X: bg.X, Y: bg.Y}, bg.Width, bg.Height)
	} else {
		bounds, err = geo.NewBounds(b.MinX, b.MinY, b.MaxX, b.MaxY)
	}
	if err != nil {
		return nil, err
	}
	return &bounds, nil
}

// EngineConfig holds rules engine settings
type EngineConfig struct {
	Seed              int64            `json:"seed" mapstructure:"seed"`
	MaxMishapAttempts int              `json:"maxMishapAttempts" mapstructure:"maxMishapAttempts"`
	Tiers             []core.ScaleTier `json:"tiers" mapstructure:"tiers"`
	Bounds            BoundsConfig     `json:"bounds" mapstructure:"bounds"`
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// InfluxConfig holds metrics sink settings
type InfluxConfig struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Protocol string `json:"protocol" mapstructure:"protocol"`
	Token    string `json:"token" mapstructure:"token"`
	Org      string `json:"org" mapstructure:"org"`
	Bucket   string `json:"bucket" mapstructure:"bucket"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// LoadDefaults sets default values without reading a file.
func LoadDefaults() {
	setDefaults()
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("defaultTag", "Chase")
	viper.SetDefault("logsDir", "./chaselogs")

	viper.SetDefault("api.serverUrl", "http://localhost:5000")
	viper.SetDefault("api.apiKey", "")
	viper.SetDefault("api.upload", false)

	viper.SetDefault("engine.seed", 0)
	viper.SetDefault("engine.maxMishapAttempts", 20)
	viper.SetDefault("engine.bounds.enabled", false)

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "chase")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./encounters")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")
	viper.SetDefault("storage.sqlite.path", "")
	viper.SetDefault("storage.websocket.url", "")
	viper.SetDefault("storage.websocket.secret", "")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "chase-metrics")
	viper.SetDefault("influx.bucket", "chase")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "chase-engine")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetEngineConfig returns the rules engine settings.
// A last tier with no threshold is taken as unbounded, since JSON has no infinity.
func GetEngineConfig() (EngineConfig, error) {
	cfg := EngineConfig{
		Seed:              viper.GetInt64("engine.seed"),
		MaxMishapAttempts: viper.GetInt("engine.maxMishapAttempts"),
		Bounds: BoundsConfig{
			Enabled: viper.GetBool("engine.bounds.enabled"),
			MinX:    viper.GetFloat64("engine.bounds.minX"),
			MinY:    viper.GetFloat64("engine.bounds.minY"),
			MaxX:    viper.GetFloat64("engine.bounds.maxX"),
			MaxY:    viper.GetFloat64("engine.bounds.maxY"),
			Background: BackgroundConfig{
				X:      viper.GetFloat64("engine.bounds.background.x"),
				Y:      viper.GetFloat64("engine.bounds.background.y"),
				Width:  viper.GetFloat64("engine.bounds.background.width"),
				Height: viper.GetFloat64("engine.bounds.background.height"),
			},
		},
	}
	if viper.IsSet("engine.tiers") {
		if err := viper.UnmarshalKey("engine.tiers", &cfg.Tiers); err != nil {
			return cfg, fmt.Errorf("error decoding engine.tiers: %w", err)
		}
		if n := len(cfg.Tiers); n > 0 && cfg.Tiers[n-1].DistanceThreshold == 0 {
			cfg.Tiers[n-1].DistanceThreshold = math.Inf(1)
		}
	}
	return cfg, nil
}

// GetStorageConfig returns the event sink settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
			Path:         viper.GetString("storage.sqlite.path"),
		},
		WebSocket: WebSocketConfig{
			URL:    viper.GetString("storage.websocket.url"),
			Secret: viper.GetString("storage.websocket.secret"),
		},
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetInfluxConfig returns the metrics sink settings.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:  viper.GetBool("influx.enabled"),
		Host:     viper.GetString("influx.host"),
		Port:     viper.GetString("influx.port"),
		Protocol: viper.GetString("influx.protocol"),
		Token:    viper.GetString("influx.token"),
		Org:      viper.GetString("influx.org"),
		Bucket:   viper.GetString("influx.bucket"),
	}
}
