package kinema

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/akmonengine/kinema/actor"
	"github.com/akmonengine/kinema/spatial"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned by Validate, wrapped with the offending field
var ErrInvalidConfig = errors.New("kinema: invalid config")

const (
	IndexGrid = "grid"
	IndexTree = "tree"
)

// BoundsConfig is the box bodies are kept in
type BoundsConfig struct {
	Min [3]float64 `yaml:"min"`
	Max [3]float64 `yaml:"max"`
}

// Config of a World, usually loaded from a YAML file
type Config struct {
	// Index is the broad phase, "grid" or "tree"
	Index string `yaml:"index"`
	// TreeDepth caps the depth of the tree, -1 picks it at each rebuild
	TreeDepth int `yaml:"tree_depth"`
	// Dimensions is 3, or 2 to keep every body in the XY plane
	Dimensions int        `yaml:"dimensions"`
	Gravity    [3]float64 `yaml:"gravity"`
	// Elasticity is the restitution of every contact, in [0, 1]
	Elasticity float64 `yaml:"elasticity"`
	// Bounds clamps the body positions, nil for an unbounded world
	Bounds   *BoundsConfig `yaml:"bounds,omitempty"`
	LogLevel string        `yaml:"log_level,omitempty"`
}

// DefaultConfig returns a 3D grid world with earth gravity and elastic contacts
func DefaultConfig() Config {
	return Config{
		Index:      IndexGrid,
		TreeDepth:  -1,
		Dimensions: 3,
		Gravity:    [3]float64{0, -9.8, 0},
		Elasticity: 1.0,
		LogLevel:   "info",
	}
}

// LoadConfig reads a YAML file. Missing fields keep their DefaultConfig value.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("kinema: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("kinema: parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Save writes the config as YAML
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("kinema: encode config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func (c Config) Validate() error {
	switch c.Index {
	case IndexGrid, IndexTree:
	default:
		return fmt.Errorf("%w: index %q, want %q or %q", ErrInvalidConfig, c.Index, IndexGrid, IndexTree)
	}
	if c.TreeDepth > spatial.MaxDepth {
		return fmt.Errorf("%w: tree_depth %d above %d", ErrInvalidConfig, c.TreeDepth, spatial.MaxDepth)
	}
	if c.Dimensions != 2 && c.Dimensions != 3 {
		return fmt.Errorf("%w: dimensions %d, want 2 or 3", ErrInvalidConfig, c.Dimensions)
	}
	for _, g := range c.Gravity {
		if math.IsNaN(g) || math.IsInf(g, 0) {
			return fmt.Errorf("%w: gravity %v", ErrInvalidConfig, c.Gravity)
		}
	}
	if c.Elasticity < 0 || c.Elasticity > 1 || math.IsNaN(c.Elasticity) {
		return fmt.Errorf("%w: elasticity %v outside [0, 1]", ErrInvalidConfig, c.Elasticity)
	}
	if c.Bounds != nil {
		for i := 0; i < 3; i++ {
			if c.Bounds.Min[i] > c.Bounds.Max[i] {
				return fmt.Errorf("%w: bounds min %v above max %v", ErrInvalidConfig, c.Bounds.Min, c.Bounds.Max)
			}
		}
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("%w: log_level: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Level parses LogLevel, empty meaning info
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	err := level.UnmarshalText([]byte(c.LogLevel))
	return level, err
}

// NewIndex creates the broad phase described by the config
func (c Config) NewIndex() spatial.Index[uint32] {
	opts := spatial.Options{Dimensions: c.Dimensions}
	if c.Index == IndexTree {
		tree := spatial.NewTree[uint32](opts)
		tree.SetDepth(c.TreeDepth)
		return tree
	}
	return spatial.NewGrid[uint32](opts)
}

func (c Config) bounds() actor.AABB {
	if c.Bounds == nil {
		return actor.EmptyAABB()
	}
	return actor.AABB{Min: mgl64.Vec3(c.Bounds.Min), Max: mgl64.Vec3(c.Bounds.Max)}
}
