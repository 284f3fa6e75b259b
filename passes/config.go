package passes

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// PipelineConfig is the YAML-loadable description of which named passes to
// run and in what order. The passes themselves are free functions in this
// package; this is the ambient "which ones, in what order" configuration
// surface, playing the role naga's CompileOptions plays for the shader
// compilation pipeline.
type PipelineConfig struct {
	Passes    []string `yaml:"passes"`
	MaxSweeps int      `yaml:"maxSweeps"`
}

// LoadPipelineConfig parses a YAML pipeline description.
func LoadPipelineConfig(data []byte) (*PipelineConfig, error) {
	var cfg PipelineConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing pipeline config: %w", err)
	}
	return &cfg, nil
}

// StandardPasses is the registry of built-in passes addressable by name in
// a PipelineConfig. FoldConstantGammas is deliberately absent: it needs a
// constant-detector callback the YAML format has no way to express, so
// callers wanting it append it to the built Pipeline themselves.
var StandardPasses = map[string]func() Pass{
	"dead-node-elimination": DeadNodeElimination,
	"cse":                   CSE,
	"flatten-binary":        Flatten,
	"unflatten-binary":      Unflatten,
}

// Build resolves cfg's pass names against StandardPasses into a runnable
// Pipeline, or returns an error naming the first unrecognized pass.
func (cfg *PipelineConfig) Build() (*Pipeline, error) {
	built := make([]Pass, 0, len(cfg.Passes))
	for _, name := range cfg.Passes {
		ctor, ok := StandardPasses[name]
		if !ok {
			return nil, fmt.Errorf("unknown pass %q", name)
		}
		built = append(built, ctor())
	}
	p := NewPipeline(built...)
	if cfg.MaxSweeps > 0 {
		p.MaxSweeps = cfg.MaxSweeps
	}
	return p, nil
}
