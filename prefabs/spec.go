package prefabs

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/temporaldash/traversal"
	"gopkg.in/yaml.v3"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// EntityBuildSpec is a prefab: a name plus raw component specs keyed by
// component name.
type EntityBuildSpec struct {
	Name       string         `yaml:"name"`
	Components map[string]any `yaml:"components"`
}

func LoadEntityBuildSpec(filename string) (EntityBuildSpec, error) {
	return LoadSpec[EntityBuildSpec](filename)
}

func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	return DecodeComponentSpecOver(raw, zero)
}

// DecodeComponentSpecOver decodes raw on top of base, so fields the prefab
// leaves out keep their base values.
func DecodeComponentSpecOver[T any](raw any, base T) (T, error) {
	if raw == nil {
		return base, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return base, err
	}
	out := base
	if err := yaml.Unmarshal(b, &out); err != nil {
		return base, err
	}
	return out, nil
}

// Vec3 is an [x, y, z] triple in a spec.
type Vec3 [3]float64

func (v Vec3) Vec() mgl64.Vec3 {
	return mgl64.Vec3(v)
}

type BodyComponentSpec struct {
	Position    *Vec3 `yaml:"position"`
	HalfExtents *Vec3 `yaml:"half_extents"`
}

type ScriptComponentSpec struct {
	Path string `yaml:"path"`
}

// LoadTuning reads the traversal component of a prefab over the stock
// tuning and normalizes the result.
func LoadTuning(filename string) (traversal.Tuning, error) {
	spec, err := LoadEntityBuildSpec(filename)
	if err != nil {
		return traversal.DefaultTuning(), err
	}
	t, err := DecodeComponentSpecOver(spec.Components["traversal"], traversal.DefaultTuning())
	if err != nil {
		return traversal.DefaultTuning(), fmt.Errorf("prefabs: decode tuning in %s: %w", filename, err)
	}
	return t.Normalize(), nil
}
