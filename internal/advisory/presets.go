package advisory

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// boundsEpsilon is the tolerance for matching form bounds to a preset.
const boundsEpsilon = 1e-6

var ErrInvalidPreset = errors.New("invalid severity preset")

// Range is an inclusive CVSS score interval.
type Range struct {
	Min float64 `yaml:"min" toml:"min" json:"min"`
	Max float64 `yaml:"max" toml:"max" json:"max"`
}

// Matches reports whether min and max equal the range bounds.
func (r Range) Matches(min, max float64) bool {
	return math.Abs(min-r.Min) < boundsEpsilon && math.Abs(max-r.Max) < boundsEpsilon
}

// Presets maps a severity name to its CVSS range.
type Presets map[string]Range

// DefaultPresets returns the standard CVSS v3 severity bands.
func DefaultPresets() Presets {
	return Presets{
		"critical": {Min: 9.0, Max: 10.0},
		"high":     {Min: 7.0, Max: 8.9},
		"medium":   {Min: 4.0, Max: 6.9},
		"low":      {Min: 0.1, Max: 3.9},
	}
}

// Lookup finds a preset by case-insensitive name.
func (p Presets) Lookup(name string) (Range, bool) {
	r, ok := p[strings.ToLower(strings.TrimSpace(name))]
	return r, ok
}

// Names returns preset names from most to least severe.
func (p Presets) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := p[names[i]], p[names[j]]
		if a.Min != b.Min {
			return a.Min > b.Min
		}
		return names[i] < names[j]
	})
	return names
}

type presetsFile struct {
	Presets map[string]Range `yaml:"presets" toml:"presets"`
}

// LoadPresets reads presets from a YAML file of the form
//
//	presets:
//	  critical: {min: 9.0, max: 10.0}
//
// or, when the path ends in .toml, the equivalent TOML tables. An empty
// path returns the defaults.
func LoadPresets(path string) (Presets, error) {
	if path == "" {
		return DefaultPresets(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return ParsePresetsTOML(data)
	}
	return ParsePresets(data)
}

// ParsePresets decodes and validates preset YAML.
func ParsePresets(data []byte) (Presets, error) {
	var file presetsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	return file.validate()
}

// ParsePresetsTOML decodes and validates preset TOML.
func ParsePresetsTOML(data []byte) (Presets, error) {
	var file presetsFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	return file.validate()
}

func (file presetsFile) validate() (Presets, error) {
	if len(file.Presets) == 0 {
		return nil, fmt.Errorf("%w: no presets defined", ErrInvalidPreset)
	}

	presets := make(Presets, len(file.Presets))
	for name, r := range file.Presets {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			return nil, fmt.Errorf("%w: empty name", ErrInvalidPreset)
		}
		if r.Min < 0 || r.Max > 10 || r.Min > r.Max {
			return nil, fmt.Errorf("%w: %s has range %v-%v", ErrInvalidPreset, key, r.Min, r.Max)
		}
		presets[key] = r
	}
	return presets, nil
}
