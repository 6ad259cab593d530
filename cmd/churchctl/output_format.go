package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

func validateOutputFormat(outputFormat string) error {
	switch strings.ToLower(outputFormat) {
	case outputTable, outputJSON, outputYAML:
	default:
		return errors.Errorf("unknown output format %q", outputFormat)
	}
	return nil
}

// printStructured writes v as indented JSON or as YAML
func printStructured(outputFormat string, v any) error {
	switch strings.ToLower(outputFormat) {
	case outputYAML:
		yamlBytes, err := yaml.Marshal(v)
		if err != nil {
			return errors.Wrap(err, "error formatting output")
		}
		fmt.Print(string(yamlBytes))
	default:
		prettyJSON, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return errors.Wrap(err, "error formatting output")
		}
		fmt.Println(string(prettyJSON))
	}
	return nil
}
