package config

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/emove/connector/codec"
	"github.com/emove/connector/codec/payload"
	"github.com/emove/connector/log"
	"github.com/emove/connector/transport"
	"github.com/emove/connector/transport/tcp"
)

// Config holds the connector configuration.
type Config struct {
	Address string    `yaml:"address"`
	Codec   CodecConf `yaml:"codec"`
	TCP     TCPConf   `yaml:"tcp"`
	Log     LogConf   `yaml:"log"`
	Pool    PoolConf  `yaml:"pool"`
}

type CodecConf struct {
	// UnitWidth is the code unit size in bits, 8 or 16.
	UnitWidth int    `yaml:"unit_width"`
	ByteOrder string `yaml:"byte_order"`
}

type TCPConf struct {
	Network         string        `yaml:"network"`
	DialTimeout     time.Duration `yaml:"dial_timeout"`
	Keepalive       bool          `yaml:"keepalive"`
	KeepalivePeriod time.Duration `yaml:"keepalive_period"`
	Linger          int           `yaml:"linger"`
	NoDelay         bool          `yaml:"no_delay"`
	ReadBuffer      int           `yaml:"read_buffer"`
}

type LogConf struct {
	Level string `yaml:"level"`
}

type PoolConf struct {
	Capacity int `yaml:"capacity"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	ops := tcp.DefaultOptions()
	return &Config{
		Codec: CodecConf{
			UnitWidth: 16,
			ByteOrder: "big",
		},
		TCP: TCPConf{
			Network:         ops.Network,
			DialTimeout:     ops.Timeout,
			Keepalive:       ops.Keepalive,
			KeepalivePeriod: ops.KeepAlivePeriod,
			Linger:          ops.Linger,
			NoDelay:         ops.NoDelay,
			ReadBuffer:      ops.ReadBufferSize,
		},
		Log: LogConf{
			Level: "info",
		},
		Pool: PoolConf{
			Capacity: 1 << 10,
		},
	}
}

// DefaultPath returns the default config file path: ~/.connector/config.yaml
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".connector", "config.yaml")
	}
	return filepath.Join(home, ".connector", "config.yaml")
}

// Load reads the configuration from the given YAML file path.
// If the file does not exist, it returns Default with no error.
// Keys missing from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values no component can use.
func (c *Config) Validate() error {
	switch c.Codec.UnitWidth {
	case 8, 16:
	default:
		return fmt.Errorf("codec.unit_width must be 8 or 16, got %d", c.Codec.UnitWidth)
	}
	if _, err := byteOrder(c.Codec.ByteOrder); err != nil {
		return err
	}
	switch c.TCP.Network {
	case "tcp", "tcp4", "tcp6":
	default:
		return fmt.Errorf("tcp.network must be tcp, tcp4 or tcp6, got %q", c.TCP.Network)
	}
	if c.TCP.DialTimeout < 0 {
		return fmt.Errorf("tcp.dial_timeout must not be negative")
	}
	if c.TCP.ReadBuffer <= 0 {
		return fmt.Errorf("tcp.read_buffer must be positive, got %d", c.TCP.ReadBuffer)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Pool.Capacity <= 0 {
		return fmt.Errorf("pool.capacity must be positive, got %d", c.Pool.Capacity)
	}
	return nil
}

// PayloadCodec builds the codec described by the codec section.
func (c *Config) PayloadCodec() (codec.PayloadCodec, error) {
	order, err := byteOrder(c.Codec.ByteOrder)
	if err != nil {
		return nil, err
	}
	return payload.New(c.Codec.UnitWidth, payload.WithByteOrder(order))
}

// TCPOptions converts the tcp section into transport options.
func (c *Config) TCPOptions() []transport.Option {
	return []transport.Option{
		tcp.WithNetwork(c.TCP.Network),
		tcp.WithTimeout(c.TCP.DialTimeout),
		tcp.WithKeepalive(c.TCP.Keepalive),
		tcp.WithKeepalivePeriod(c.TCP.KeepalivePeriod),
		tcp.WithLinger(c.TCP.Linger),
		tcp.WithNoDelay(c.TCP.NoDelay),
		tcp.WithReadBufferSize(c.TCP.ReadBuffer),
	}
}

// LogLevel returns the parsed log.level.
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.LevelInfo
	}
	return level
}

func byteOrder(name string) (binary.ByteOrder, error) {
	switch strings.ToLower(name) {
	case "", "big":
		return binary.BigEndian, nil
	case "little":
		return binary.LittleEndian, nil
	default:
		return nil, fmt.Errorf("codec.byte_order must be big or little, got %q", name)
	}
}
