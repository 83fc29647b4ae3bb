package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/lewisthorpe1994/DataPipelineFoundry/pkg/diagnostics"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// LoadProjectConfig reads and validates foundry-project.yml.
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	var cfg ProjectConfig
	if err := decodeFile(path, &cfg); err != nil {
		return nil, err
	}
	if err := validatorInstance().Struct(&cfg); err != nil {
		return nil, wrapValidationErr(path, err)
	}
	return &cfg, nil
}

// LoadConnectionsFile reads and validates connections.yml.
func LoadConnectionsFile(path string) (ConnectionsFile, error) {
	var cf ConnectionsFile
	if err := decodeFile(path, &cf); err != nil {
		return nil, err
	}
	for profile, conns := range cf {
		for name, spec := range conns {
			if err := validatorInstance().Struct(spec); err != nil {
				return nil, wrapValidationErr(path, fmt.Errorf("profile %q connection %q: %w", profile, name, err))
			}
		}
	}
	return cf, nil
}

// LoadExternalDBSpec reads a warehouse or source-db YAML declaration.
func LoadExternalDBSpec(path string) (*ExternalDBSpec, error) {
	var spec ExternalDBSpec
	if err := decodeFile(path, &spec); err != nil {
		return nil, err
	}
	if err := validatorInstance().Struct(&spec); err != nil {
		return nil, wrapValidationErr(path, err)
	}
	return &spec, nil
}

// LoadKafkaClusterSpec reads a Kafka cluster YAML declaration.
func LoadKafkaClusterSpec(path string) (*KafkaClusterSpec, error) {
	var spec KafkaClusterSpec
	if err := decodeFile(path, &spec); err != nil {
		return nil, err
	}
	if err := validatorInstance().Struct(&spec); err != nil {
		return nil, wrapValidationErr(path, err)
	}
	return &spec, nil
}

// LoadAPISourceSpec reads an API source YAML declaration.
func LoadAPISourceSpec(path string) (*APISourceSpec, error) {
	var spec APISourceSpec
	if err := decodeFile(path, &spec); err != nil {
		return nil, err
	}
	if err := validatorInstance().Struct(&spec); err != nil {
		return nil, wrapValidationErr(path, err)
	}
	return &spec, nil
}

// LoadModelSidecar reads a model's optional sibling `_<name>.yml` file.
// A missing sidecar is not an error: callers check os.IsNotExist.
func LoadModelSidecar(path string) (*ModelSidecar, error) {
	var sidecar ModelSidecar
	if err := decodeFile(path, &sidecar); err != nil {
		return nil, err
	}
	if err := validatorInstance().Struct(&sidecar); err != nil {
		return nil, wrapValidationErr(path, err)
	}
	return &sidecar, nil
}

// LoadConnectorSchema reads a connector's sibling include-list YAML.
func LoadConnectorSchema(path string) (*ConnectorSchemaFile, error) {
	var schema ConnectorSchemaFile
	if err := decodeFile(path, &schema); err != nil {
		return nil, err
	}
	if err := validatorInstance().Struct(&schema); err != nil {
		return nil, wrapValidationErr(path, err)
	}
	return &schema, nil
}

func decodeFile(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return diagnostics.New(diagnostics.KindParseError, diagnostics.Span{File: path}, "",
			fmt.Sprintf("reading %s: %v", path, err))
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return diagnostics.New(diagnostics.KindParseError, diagnostics.Span{File: path, Line: extractLine(err)}, "",
			fmt.Sprintf("parsing %s: %v", path, err))
	}
	return nil
}

func wrapValidationErr(path string, err error) error {
	return diagnostics.New(diagnostics.KindParseError, diagnostics.Span{File: path}, "",
		fmt.Sprintf("validating %s: %v", path, err))
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}
	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}
	var line int
	if _, scanErr := fmt.Sscanf(matches[1], "%d", &line); scanErr != nil {
		return 0
	}
	return line
}
