// Package workflow builds and runs the export pipelines that turn an editable
// font project into a compiled font or another project format.
package workflow

import (
	"errors"
	"fmt"

	"fontra-pak/internal/backend"

	"gopkg.in/yaml.v3"
)

var ErrUnknownFormat = errors.New("no workflow for format")

const (
	KindInput  = "input"
	KindFilter = "filter"
	KindOutput = "output"
)

// Param is one key of a step, kept in declaration order.
type Param struct {
	Key   string
	Value interface{}
}

// Step is a single input, filter or output entry of a workflow.
type Step struct {
	Kind   string
	Name   string
	Params []Param
}

// Config is the declarative step list consumed by the workflow engine.
type Config struct {
	Steps []Step `yaml:"steps"`
}

// compileVerbosity is passed to the compiler so its diagnostics reach the log.
const compileVerbosity = "DEBUG"

// BuildConfig returns the pipeline compiling source into dest. Only the
// compiled formats have a pipeline; project formats are copied directly.
func BuildConfig(source, dest string, format backend.Format) (Config, error) {
	var compileOptions []Param
	switch format {
	case backend.FormatTTF:
		compileOptions = []Param{{"verbose", compileVerbosity}}
	case backend.FormatOTF:
		compileOptions = []Param{{"verbose", compileVerbosity}, {"output", "variable-cff2"}}
	default:
		return Config{}, fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}

	return Config{Steps: []Step{
		{Kind: KindInput, Name: "fontra-read", Params: []Param{{"source", source}}},
		{Kind: KindFilter, Name: "decompose-composites", Params: []Param{{"onlyVariableComposites", true}}},
		{Kind: KindFilter, Name: "drop-unreachable-glyphs"},
		{Kind: KindOutput, Name: "compile-fontmake", Params: []Param{
			{"destination", dest},
			{"options", orderedMap(compileOptions)},
		}},
	}}, nil
}

func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func ParseConfig(data []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse workflow config: %w", err)
	}
	return c, nil
}

// Filters returns the filter names in pipeline order.
func (c Config) Filters() []string {
	var names []string
	for _, s := range c.Steps {
		if s.Kind == KindFilter {
			names = append(names, s.Name)
		}
	}
	return names
}

func (s Step) Param(key string) (interface{}, bool) {
	for _, p := range s.Params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}

type orderedMap []Param

func (m orderedMap) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, p := range m {
		var value yaml.Node
		if err := value.Encode(p.Value); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: p.Key}, &value)
	}
	return node, nil
}

func (s Step) MarshalYAML() (interface{}, error) {
	return orderedMap(append([]Param{{s.Kind, s.Name}}, s.Params...)).MarshalYAML()
}

func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode || len(node.Content) < 2 {
		return fmt.Errorf("line %d: workflow step must be a mapping", node.Line)
	}
	kind := node.Content[0].Value
	switch kind {
	case KindInput, KindFilter, KindOutput:
	default:
		return fmt.Errorf("line %d: unknown step kind %q", node.Line, kind)
	}
	s.Kind = kind
	s.Name = node.Content[1].Value
	s.Params = nil

	for i := 2; i+1 < len(node.Content); i += 2 {
		var value interface{}
		if err := node.Content[i+1].Decode(&value); err != nil {
			return err
		}
		s.Params = append(s.Params, Param{Key: node.Content[i].Value, Value: value})
	}
	return nil
}
