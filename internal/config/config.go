package config

import (
	"encoding/binary"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/crypto/blake2b"
)

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Dungeon   DungeonConfig   `toml:"dungeon"`
	Data      DataConfig      `toml:"data"`
	Scripting ScriptingConfig `toml:"scripting"`
	Database  DatabaseConfig  `toml:"database"`
	Network   NetworkConfig   `toml:"network"`
	Autopilot AutopilotConfig `toml:"autopilot"`
	Logging   LoggingConfig   `toml:"logging"`
	Locale    LocaleConfig    `toml:"locale"`
}

type ServerConfig struct {
	Name      string `toml:"name"`
	StartTime int64  // set at boot, not from config
}

type DungeonConfig struct {
	FlowAddress      string  `toml:"flow_address"`
	CullingEnabled   bool    `toml:"culling_enabled"`
	StaticBatchRooms bool    `toml:"static_batch_rooms"`
	Seed             int64   `toml:"seed"`        // 0 = randomise
	SeedPhrase       string  `toml:"seed_phrase"` // overrides Seed when set
	NavMeshEpsilon   float64 `toml:"navmesh_epsilon"`
}

// ResolvedSeed returns the seed to request from the generator. A seed
// phrase hashes to a stable positive seed so a dungeon can be shared by
// name.
func (d DungeonConfig) ResolvedSeed() int64 {
	if d.SeedPhrase == "" {
		return d.Seed
	}
	return PhraseSeed(d.SeedPhrase)
}

// PhraseSeed maps a phrase to a positive, non-zero int64.
func PhraseSeed(phrase string) int64 {
	sum := blake2b.Sum256([]byte(phrase))
	seed := int64(binary.LittleEndian.Uint64(sum[:8]) >> 1)
	if seed == 0 {
		seed = 1
	}
	return seed
}

type DataConfig struct {
	FlowsDir string `toml:"flows_dir"`
}

type ScriptingConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type DatabaseConfig struct {
	DSN             string        `toml:"dsn"` // empty disables run history
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
	FlushFrames     int           `toml:"flush_frames"`
}

type NetworkConfig struct {
	BindAddress      string        `toml:"bind_address"` // empty disables the websocket feed
	FrameRate        time.Duration `toml:"frame_rate"`
	InQueueSize      int           `toml:"in_queue_size"`
	OutQueueSize     int           `toml:"out_queue_size"`
	MaxMessagesFrame int           `toml:"max_messages_per_frame"`
	WriteTimeout     time.Duration `toml:"write_timeout"`
	ReadTimeout      time.Duration `toml:"read_timeout"`
}

type AutopilotConfig struct {
	Enabled bool    `toml:"enabled"`
	Speed   float64 `toml:"speed"` // world units per second
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type LocaleConfig struct {
	Dir      string `toml:"dir"`
	Language string `toml:"language"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Server.StartTime = time.Now().Unix()
	return cfg, nil
}

// Default returns the built-in configuration, used when no file exists.
func Default() *Config {
	cfg := defaults()
	cfg.Server.StartTime = time.Now().Unix()
	return cfg
}

func (c *Config) validate() error {
	if c.Dungeon.FlowAddress == "" {
		return fmt.Errorf("dungeon.flow_address is empty")
	}
	if c.Network.FrameRate <= 0 {
		return fmt.Errorf("network.frame_rate must be positive, got %s", c.Network.FrameRate)
	}
	if c.Dungeon.Seed < 0 {
		return fmt.Errorf("dungeon.seed must not be negative, got %d", c.Dungeon.Seed)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "dungeond",
		},
		Dungeon: DungeonConfig{
			FlowAddress:      "Bas.DungeonFlow.Greenland",
			CullingEnabled:   true,
			StaticBatchRooms: true,
			NavMeshEpsilon:   0.05,
		},
		Data: DataConfig{
			FlowsDir: "data/flows",
		},
		Scripting: ScriptingConfig{
			Enabled: true,
			Dir:     "scripts",
		},
		Database: DatabaseConfig{
			MaxOpenConns:    4,
			MaxIdleConns:    1,
			ConnMaxLifetime: 30 * time.Minute,
			FlushFrames:     300,
		},
		Network: NetworkConfig{
			BindAddress:      "127.0.0.1:7101",
			FrameRate:        time.Second / 60,
			InQueueSize:      64,
			OutQueueSize:     256,
			MaxMessagesFrame: 16,
			WriteTimeout:     10 * time.Second,
			ReadTimeout:      60 * time.Second,
		},
		Autopilot: AutopilotConfig{
			Enabled: false,
			Speed:   8,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Locale: LocaleConfig{
			Dir:      "locales",
			Language: "en_US",
		},
	}
}
