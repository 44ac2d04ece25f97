package warmer

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/structs"
	koanf "github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	MergeDefaultBytes   = 16 * 1024 * 1024 // tuned to stay within a backend object boundary (spec §4.3)
	SparseSampleBytes   = 64 * 1024        // fixed sparse-sample interval floor, from rust-cache-warmer's io_uring sparse path
	MaxThreads          = 16
	DefaultThreads      = 1
)

// Config is the validated, immutable option set shared by both binaries.
// Struct tags follow the teacher's `key:"..." json:"..."` convention so the
// same struct can be populated from flags, environment variables, or a
// config file via koanf.
type Config struct {
	ReadSizeKB       int64     `key:"read-size-kb" json:"read_size_kb"`
	StrideKB         int64     `key:"stride-kb" json:"stride_kb"`
	QueueDepth       int       `key:"queue-depth" json:"queue_depth"`
	FullDisk         bool      `key:"full-disk" json:"full_disk"`
	MergeExtents     bool      `key:"merge-extents" json:"merge_extents"`
	Threads          int       `key:"threads" json:"threads"`
	MaxDepth         int       `key:"max-depth" json:"max_depth"`
	FollowSymlinks   bool      `key:"follow-symlinks" json:"follow_symlinks"`
	RespectIgnore    bool      `key:"respect-ignore" json:"respect_ignore"`
	IgnoreHidden     bool      `key:"ignore-hidden" json:"ignore_hidden"`
	MaxFileSize      int64     `key:"max-file-size" json:"max_file_size"`
	SparseLargeFiles int64     `key:"sparse-large-files" json:"sparse_large_files"`
	Throttle         int       `key:"throttle" json:"throttle"`
	Backend          IoBackend `key:"io-backend" json:"io_backend"`
	DirectIO         bool      `key:"direct-io" json:"direct_io"`
	Silent           bool      `key:"silent" json:"silent"`
	Syslog           bool      `key:"syslog" json:"syslog"`
	Debug            bool      `key:"debug" json:"debug"`

	Directories []string `key:"directories" json:"directories"`
	DevicePath  string   `key:"device" json:"device"`
}

// DefaultCoreAConfig returns Core A's (block-device warmer) defaults.
func DefaultCoreAConfig() Config {
	return Config{
		ReadSizeKB:   4,
		StrideKB:     512,
		QueueDepth:   128,
		Threads:      DefaultThreads,
		MaxDepth:     -1,
		Backend:      IoBackendAuto,
		DirectIO:     true,
		MergeExtents: false,
	}
}

// DefaultCoreBConfig returns Core B's (file cache-warmer) defaults.
func DefaultCoreBConfig() Config {
	return Config{
		ReadSizeKB: 128,
		StrideKB:   512,
		QueueDepth: 128,
		Threads:    DefaultThreads,
		MaxDepth:   -1,
		Backend:    IoBackendAuto,
		DirectIO:   false,
	}
}

// LoadConfig merges flags > environment (WARMER_ prefixed) > an optional
// config file > defaults, then validates the result. fs must already have
// been parsed by the caller (argument parsing itself is out of scope; this
// only binds an already-parsed flag set into the layered config).
func LoadConfig(defaults Config, fs *pflag.FlagSet, configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults, "key"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if configPath != "" {
		parser := parserFor(configPath)
		if err := k.Load(file.Provider(configPath), parser); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("WARMER_", ".", envKeyTransform), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	if fs != nil {
		if err := k.Load(posflag.Provider(fs, ".", k), nil); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "key"}); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate enforces the invariants from spec §3's data model table.
func (c *Config) Validate() error {
	if c.ReadSizeKB <= 0 {
		return fmt.Errorf("%w: read-size-kb must be > 0", ErrInvalidConfig)
	}
	if c.StrideKB <= 0 {
		return fmt.Errorf("%w: stride-kb must be > 0", ErrInvalidConfig)
	}
	if c.QueueDepth < 1 {
		return fmt.Errorf("%w: queue-depth must be >= 1", ErrInvalidConfig)
	}
	if c.Threads < 1 {
		c.Threads = 1
	}
	if c.Threads > MaxThreads {
		c.Threads = MaxThreads
	}
	if c.Throttle < 0 || c.Throttle > 7 {
		return fmt.Errorf("%w: throttle must be 0..7", ErrInvalidConfig)
	}
	switch c.Backend {
	case IoBackendAuto, IoBackendRing, IoBackendAIO:
	default:
		return fmt.Errorf("%w: io-backend must be ring, aio, or auto", ErrInvalidConfig)
	}
	if len(c.Directories) == 0 {
		return ErrNoRoots
	}
	return nil
}

// ReadSizeBytes returns the configured read size in bytes.
func (c *Config) ReadSizeBytes() int64 { return c.ReadSizeKB * 1024 }

// StrideBytes returns the configured stride in bytes.
func (c *Config) StrideBytes() int64 { return c.StrideKB * 1024 }

func parserFor(path string) koanf.Parser {
	if len(path) > 5 && (path[len(path)-5:] == ".yaml" || path[len(path)-4:] == ".yml") {
		return yaml.Parser()
	}
	return json.Parser()
}

// envKeyTransform maps WARMER_READ_SIZE_KB to the read-size-kb key.
func envKeyTransform(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "WARMER_")), "_", "-")
}
