// Package config reads ".hgsrc.yaml" — SPEC_FULL.md §6's optional
// per-project/per-user override file for VM resource limits and the JIT's
// hot-path threshold. Grounded on gopkg.in/yaml.v2, the one YAML library
// the teacher's go.mod already carries (used there for its own project
// manifest parsing); this package reuses it for the exact same
// "unmarshal a small struct, apply defaults for anything absent" shape.
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"

	"hangeulscript/internal/jit"
	"hangeulscript/internal/vm"
)

// Config is ".hgsrc.yaml"'s schema. Every field is optional; a zero value
// means "leave the compiled-in default alone".
type Config struct {
	VM  VMConfig  `yaml:"vm"`
	JIT JITConfig `yaml:"jit"`
}

type VMConfig struct {
	MaxInstructions    int64 `yaml:"max_instructions"`
	MaxExecutionTimeMs int64 `yaml:"max_execution_time_ms"`
	MaxStackDepth      int   `yaml:"max_stack_depth"`
}

type JITConfig struct {
	HotThreshold int `yaml:"hot_threshold"`
}

// Load searches, in order, the current working directory and $HOME for
// ".hgsrc.yaml" and parses the first one found. A missing file is not an
// error — it returns a zero Config, which ApplyLimits and ApplyJIT treat as
// "no overrides".
func Load() (*Config, error) {
	for _, dir := range searchDirs() {
		path := filepath.Join(dir, ".hgsrc.yaml")
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		var cfg Config
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	return &Config{}, nil
}

func searchDirs() []string {
	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, home)
	}
	return dirs
}

// ApplyLimits overrides v's DefaultLimits()-seeded Limits with whatever
// non-zero fields c.VM carries.
func (c *Config) ApplyLimits(v *vm.VM) {
	limits := vm.DefaultLimits()
	if c.VM.MaxInstructions != 0 {
		limits.MaxInstructions = c.VM.MaxInstructions
	}
	if c.VM.MaxExecutionTimeMs != 0 {
		limits.MaxExecutionTime = time.Duration(c.VM.MaxExecutionTimeMs) * time.Millisecond
	}
	if c.VM.MaxStackDepth != 0 {
		limits.MaxStackDepth = c.VM.MaxStackDepth
	}
	v.SetLimits(limits)
}

// ApplyJIT overrides rt's hot-path threshold if c.JIT names one.
func (c *Config) ApplyJIT(rt *jit.Runtime) {
	if c.JIT.HotThreshold != 0 {
		rt.SetHotThreshold(c.JIT.HotThreshold)
	}
}
