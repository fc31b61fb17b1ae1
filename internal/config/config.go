// Package config loads the gating policy, type vocabulary and dispatch
// rules from a YAML file, with compiled-in defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sprite-ai/mergegate/internal/convention"
	"github.com/sprite-ai/mergegate/internal/dispatch"
	"github.com/sprite-ai/mergegate/internal/gate"
	"github.com/sprite-ai/mergegate/internal/model"
)

// Config is the on-disk configuration shape.
type Config struct {
	Policy struct {
		MutationThreshold   float64  `yaml:"mutation_threshold"`
		AutoAllowCategories []string `yaml:"auto_allow_categories"`
		AlwaysAllowLabels   []string `yaml:"always_allow_labels"`
	} `yaml:"policy"`

	Vocabulary struct {
		Types           map[string]string `yaml:"types"` // token -> category name
		BreakingMarkers []string          `yaml:"breaking_markers"`
	} `yaml:"vocabulary"`

	Dispatch []DispatchRule `yaml:"dispatch"`

	Document struct {
		SectionID string `yaml:"section_id"`
	} `yaml:"document"`
}

// DispatchRule is one (label, action) -> behavior entry.
type DispatchRule struct {
	Label    string `yaml:"label"`
	Action   string `yaml:"action"`   // added | removed
	Behavior string `yaml:"behavior"` // pin | unpin | notify | noop
}

// Default returns the compiled-in configuration.
func Default() Config {
	var c Config
	c.Policy.MutationThreshold = 0.80
	c.Policy.AutoAllowCategories = []string{"patch", "minor"}
	c.Policy.AlwaysAllowLabels = []string{"security", "critical"}
	c.Document.SectionID = "gating"
	return c
}

// Load reads a YAML config file. Fields left empty fall back to the
// defaults at conversion time.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	c := Default()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	return c, nil
}

// GatePolicy converts the config into a gate.Policy.
func (c Config) GatePolicy() gate.Policy {
	p := gate.Policy{
		MutationThreshold:   c.Policy.MutationThreshold,
		AutoAllowCategories: make(map[model.Category]bool),
		AlwaysAllowLabels:   make(map[string]bool),
	}
	for _, name := range c.Policy.AutoAllowCategories {
		if cat := model.ParseCategory(name); cat != model.CategoryInvalid {
			p.AutoAllowCategories[cat] = true
		}
	}
	for _, l := range c.Policy.AlwaysAllowLabels {
		p.AlwaysAllowLabels[l] = true
	}
	return p
}

// ConventionVocabulary converts the config into a convention.Vocabulary.
// An empty types map falls back to the stock vocabulary.
func (c Config) ConventionVocabulary() convention.Vocabulary {
	if len(c.Vocabulary.Types) == 0 && len(c.Vocabulary.BreakingMarkers) == 0 {
		return convention.DefaultVocabulary()
	}

	v := convention.Vocabulary{
		Types:           make(map[string]model.Category),
		BreakingMarkers: make(map[string]bool),
	}
	for token, name := range c.Vocabulary.Types {
		if cat := model.ParseCategory(name); cat != model.CategoryInvalid {
			v.Types[token] = cat
		}
	}
	for _, m := range c.Vocabulary.BreakingMarkers {
		v.BreakingMarkers[m] = true
	}
	if len(v.BreakingMarkers) == 0 {
		v.BreakingMarkers["breaking"] = true
	}
	return v
}

// DispatchTable converts the config's dispatch rules into a lookup
// table. No rules means the stock table.
func (c Config) DispatchTable() *dispatch.Table {
	if len(c.Dispatch) == 0 {
		return dispatch.DefaultTable()
	}

	t := dispatch.NewTable()
	for _, r := range c.Dispatch {
		action := model.LabelAdded
		if r.Action == "removed" {
			action = model.LabelRemoved
		}
		t.Add(r.Label, action, parseBehavior(r.Behavior))
	}
	return t
}

func parseBehavior(s string) model.Behavior {
	switch s {
	case "pin":
		return model.BehaviorPin
	case "unpin":
		return model.BehaviorUnpin
	case "notify":
		return model.BehaviorNotify
	default:
		return model.BehaviorNoOp
	}
}

// SectionID returns the configured verdict section id.
func (c Config) SectionID() string {
	if c.Document.SectionID == "" {
		return "gating"
	}
	return c.Document.SectionID
}
