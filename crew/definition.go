package crew

import (
	_ "embed"
	"os"
	"path/filepath"
	"slices"

	"github.com/goccy/go-yaml"
	"github.com/habiliai/agenteat/errors"
	internalmcp "github.com/habiliai/agenteat/internal/genkit/plugins/mcp"
	"github.com/mitchellh/mapstructure"
)

//go:embed data/agent_eat.yaml
var defaultDefinition []byte

const (
	DefaultCrewID   = "agent_eat_crew"
	builtinPath     = "builtin/agent_eat.yaml"
	defaultMaxTurns = 10
)

type (
	Input struct {
		Name        string `yaml:"name" json:"name"`
		Description string `yaml:"description" json:"description"`
	}

	AgentDefinition struct {
		Role        string                     `yaml:"role"`
		Goal        string                     `yaml:"goal"`
		Backstory   string                     `yaml:"backstory"`
		Model       string                     `yaml:"model"`
		Tools       []string                   `yaml:"tools"`
		MaxTurns    int                        `yaml:"max_turns"`
		ModelConfig map[string]any             `yaml:"model_config"`
		MCPServers  []internalmcp.ServerConfig `yaml:"mcp_servers"`
	}

	TaskDefinition struct {
		Description    string `yaml:"description"`
		ExpectedOutput string `yaml:"expected_output"`
	}

	// Definition describes one crew: its public identity, the agent that
	// answers and the task it is given on every turn.
	Definition struct {
		ID             string          `yaml:"id"`
		Name           string          `yaml:"name"`
		Description    string          `yaml:"description"`
		Directory      string          `yaml:"directory"`
		Path           string          `yaml:"path"`
		Greeting       string          `yaml:"greeting"`
		RequiredInputs []Input         `yaml:"required_inputs"`
		Agent          AgentDefinition `yaml:"agent"`
		Task           TaskDefinition  `yaml:"task"`
	}

	// Info is the public listing entry of a crew.
	Info struct {
		ID          string `json:"id" yaml:"id"`
		Path        string `json:"path" yaml:"path"`
		Name        string `json:"name" yaml:"name"`
		Directory   string `json:"directory" yaml:"directory"`
		Description string `json:"description" yaml:"description"`
	}

	// ModelSettings is the decoded form of model_config. The JSON names
	// follow the generation config understood by the model plugins.
	ModelSettings struct {
		Temperature     *float64 `mapstructure:"temperature" json:"temperature,omitempty"`
		MaxOutputTokens int      `mapstructure:"max_output_tokens" json:"maxOutputTokens,omitempty"`
		TopK            int      `mapstructure:"top_k" json:"topK,omitempty"`
		TopP            float64  `mapstructure:"top_p" json:"topP,omitempty"`
		StopSequences   []string `mapstructure:"stop_sequences" json:"stopSequences,omitempty"`
		ReasoningEffort string   `mapstructure:"reasoning_effort" json:"reasoningEffort,omitempty"`
	}
)

func (d *Definition) Info() Info {
	return Info{
		ID:          d.ID,
		Path:        d.Path,
		Name:        d.Name,
		Directory:   d.Directory,
		Description: d.Description,
	}
}

func (d *Definition) Validate() error {
	if d.ID == "" {
		return errors.Wrapf(errors.ErrInvalidConfig, "crew id is required")
	}
	if d.Name == "" {
		return errors.Wrapf(errors.ErrInvalidConfig, "crew %s: name is required", d.ID)
	}
	if d.Task.Description == "" {
		return errors.Wrapf(errors.ErrInvalidConfig, "crew %s: task description is required", d.ID)
	}
	if d.Agent.MaxTurns < 0 {
		return errors.Wrapf(errors.ErrInvalidConfig, "crew %s: max_turns must not be negative", d.ID)
	}
	if _, err := d.ModelSettings(); err != nil {
		return err
	}
	return nil
}

func (d *Definition) MaxTurns() int {
	if d.Agent.MaxTurns == 0 {
		return defaultMaxTurns
	}
	return d.Agent.MaxTurns
}

// ModelSettings decodes model_config. It returns nil when nothing is set.
func (d *Definition) ModelSettings() (*ModelSettings, error) {
	if len(d.Agent.ModelConfig) == 0 {
		return nil, nil
	}

	var settings ModelSettings
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &settings,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if err := decoder.Decode(d.Agent.ModelConfig); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "crew %s: invalid model_config: %v", d.ID, err)
	}
	return &settings, nil
}

func ParseDefinition(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "failed to parse crew definition: %v", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

func LoadDefinitionFromFile(file string) (*Definition, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read file %s", file)
	}

	def, err := ParseDefinition(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", file)
	}
	if def.Path == "" {
		def.Path = file
	}
	return def, nil
}

// DefaultDefinition returns a fresh copy of the built-in Agent Eat crew.
func DefaultDefinition() *Definition {
	def, err := ParseDefinition(defaultDefinition)
	if err != nil {
		panic(err)
	}
	if def.Path == "" {
		def.Path = builtinPath
	}
	return def
}

// LoadDefinitions returns the built-in crew followed by every *.yaml and
// *.yml file in dir, sorted by file name. An empty dir loads only the
// built-in crew.
func LoadDefinitions(dir string) ([]*Definition, error) {
	defs := []*Definition{DefaultDefinition()}
	if dir == "" {
		return defs, nil
	}

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, errors.WithStack(err)
		}
		files = append(files, matches...)
	}
	slices.Sort(files)

	for _, file := range files {
		def, err := LoadDefinitionFromFile(file)
		if err != nil {
			return nil, err
		}
		if slices.ContainsFunc(defs, func(d *Definition) bool { return d.ID == def.ID }) {
			return nil, errors.Wrapf(errors.ErrInvalidConfig, "duplicated crew id %s in %s", def.ID, file)
		}
		defs = append(defs, def)
	}

	return defs, nil
}
