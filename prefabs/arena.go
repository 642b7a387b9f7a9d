package prefabs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/milk9111/temporaldash/arena"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

const arenaSchemaPath = "schemas/arena.schema.json"

// ArenaSpec describes a level: static solids, wall-slide volumes, hook
// targets and projectile launchers.
type ArenaSpec struct {
	Name        string           `yaml:"name"`
	FloorZ      float64          `yaml:"floor_z"`
	Spawn       SpawnSpec        `yaml:"spawn"`
	Movement    arena.MoveParams `yaml:"movement"`
	Solids      []BoxSpec        `yaml:"solids"`
	Walls       []WallSpec       `yaml:"walls"`
	HookTargets []HookTargetSpec `yaml:"hook_targets"`
	Launchers   []LauncherSpec   `yaml:"launchers"`
}

type SpawnSpec struct {
	Position Vec3    `yaml:"position"`
	Yaw      float64 `yaml:"yaw"`
}

type BoxSpec struct {
	Name string `yaml:"name"`
	Min  Vec3   `yaml:"min"`
	Max  Vec3   `yaml:"max"`
}

func (b BoxSpec) Box() arena.Box {
	return arena.Box{Min: b.Min.Vec(), Max: b.Max.Vec()}
}

type WallSpec struct {
	BoxSpec `yaml:",inline"`
	Normal  Vec3 `yaml:"normal"`
}

type HookTargetSpec struct {
	Name     string  `yaml:"name"`
	Position Vec3    `yaml:"position"`
	Yaw      float64 `yaml:"yaw"`
	Offset   Vec3    `yaml:"offset"`
	Radius   float64 `yaml:"radius"`
	Hookable *bool   `yaml:"hookable"`
}

type LauncherSpec struct {
	Name         string  `yaml:"name"`
	Origin       Vec3    `yaml:"origin"`
	Direction    Vec3    `yaml:"direction"`
	Speed        float64 `yaml:"speed"`
	Interval     float64 `yaml:"interval"`
	Delay        float64 `yaml:"delay"`
	TTL          float64 `yaml:"ttl"`
	Radius       float64 `yaml:"radius"`
	GravityScale float64 `yaml:"gravity_scale"`
}

// LoadArena reads, validates and decodes an arena prefab.
func LoadArena(filename string) (ArenaSpec, error) {
	data, err := Load(filename)
	if err != nil {
		return ArenaSpec{}, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}
	return ParseArena(filename, data)
}

// ParseArena validates data against the arena schema and decodes it.
// Movement fields left out keep their defaults.
func ParseArena(filename string, data []byte) (ArenaSpec, error) {
	if err := ValidateArena(data); err != nil {
		return ArenaSpec{}, fmt.Errorf("prefabs: validate %s: %w", filename, err)
	}
	spec := ArenaSpec{Movement: arena.DefaultMoveParams()}
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return ArenaSpec{}, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}
	return spec, nil
}

var (
	arenaSchemaOnce sync.Once
	arenaSchema     *jsonschema.Schema
	arenaSchemaErr  error
)

func loadArenaSchema() (*jsonschema.Schema, error) {
	arenaSchemaOnce.Do(func() {
		raw, err := SchemasFS.ReadFile(arenaSchemaPath)
		if err != nil {
			arenaSchemaErr = err
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(arenaSchemaPath, bytes.NewReader(raw)); err != nil {
			arenaSchemaErr = err
			return
		}
		arenaSchema, arenaSchemaErr = c.Compile(arenaSchemaPath)
	})
	return arenaSchema, arenaSchemaErr
}

// ValidateArena checks an arena YAML document against the embedded schema.
func ValidateArena(data []byte) error {
	schema, err := loadArenaSchema()
	if err != nil {
		return fmt.Errorf("compile arena schema: %w", err)
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	// The validator expects JSON value types, so round-trip through JSON.
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return schema.Validate(v)
}
