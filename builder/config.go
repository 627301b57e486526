package builder

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/notargets/ShenKernel/banded"
	"github.com/notargets/ShenKernel/basis"
	"github.com/notargets/ShenKernel/operators"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("builder: invalid config")

// Config holds configuration for creating a Builder. Enum fields decode from
// their text names ("GL", "specialized", "csr").
type Config struct {
	Modes      int              `yaml:"modes"`
	Quadrature basis.Quadrature `yaml:"quadrature"`
	Strategy   banded.Strategy  `yaml:"strategy"`
	Layout     banded.Layout    `yaml:"layout"`

	// Operators to build; empty builds every registered operator
	Operators []string `yaml:"operators,omitempty"`

	// Pencil decomposition for the runner. K, when set, gives explicit column
	// counts per partition and overrides Partitions.
	Partitions int   `yaml:"partitions"`
	K          []int `yaml:"k,omitempty"`

	LogLevel string `yaml:"log_level"`
}

// DefaultConfig is the base every parsed file is decoded over
func DefaultConfig() Config {
	return Config{
		Modes:      32,
		Quadrature: basis.GaussLobatto,
		Strategy:   banded.Specialized,
		Layout:     banded.RowCompressed,
		Partitions: 1,
		LogLevel:   "info",
	}
}

// LoadConfig reads and validates a YAML config file
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML over DefaultConfig and validates the result.
// Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %v: %w", err, ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Marshal encodes cfg back to YAML
func (cfg Config) Marshal() ([]byte, error) {
	return yaml.Marshal(cfg)
}

func (cfg Config) Validate() error {
	names := cfg.Operators
	if len(names) == 0 {
		names = operators.Names()
	}
	seen := make(map[string]bool)
	for _, name := range names {
		if seen[name] {
			return fmt.Errorf("operator %q listed twice: %w", name, ErrInvalidConfig)
		}
		seen[name] = true
		if _, err := operators.Form(name, cfg.Modes, cfg.Quadrature); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	if cfg.Partitions < 0 {
		return fmt.Errorf("partitions %d: %w", cfg.Partitions, ErrInvalidConfig)
	}
	for i, k := range cfg.K {
		if k < 1 {
			return fmt.Errorf("k[%d] = %d: %w", i, k, ErrInvalidConfig)
		}
	}
	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("log_level: %v: %w", err, ErrInvalidConfig)
	}
	return nil
}
