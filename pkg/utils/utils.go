package utils

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
)

const (
	durationPattern = `^([0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$`
	durationHint    = "Go duration, e.g. 15s or 1m30s"
)

var durationType = reflect.TypeOf(time.Duration(0))

// GetSchemaFromConfig returns the JSON schema of config as indented JSON.
// Fields tagged jsonschema:"required" are required. Durations are described
// as Go duration strings such as "15s", matching how they are written in YAML.
func GetSchemaFromConfig(config any) (string, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == durationType {
				return &jsonschema.Schema{
					Type:        "string",
					Pattern:     durationPattern,
					Description: durationHint,
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(config)

	describeDurations(schema)
	for _, definition := range schema.Definitions {
		describeDurations(definition)
	}

	jsonSchemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(jsonSchemaBytes), nil
}

// describeDurations restores the duration hint on fields whose own
// description replaced it.
func describeDurations(schema *jsonschema.Schema) {
	if schema == nil {
		return
	}

	if schema.Pattern == durationPattern && !strings.Contains(schema.Description, durationHint) {
		if schema.Description == "" {
			schema.Description = durationHint
		} else {
			schema.Description = strings.TrimSuffix(schema.Description, ".") + ". " + durationHint
		}
	}

	if schema.Properties != nil {
		for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
			describeDurations(pair.Value)
		}
	}

	describeDurations(schema.Items)
}
