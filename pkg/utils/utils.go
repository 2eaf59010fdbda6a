package utils

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
)

// GetSchemaFromConfig returns the JSON schema of config. Nested structs are
// emitted once under $defs and referenced with $ref.
func GetSchemaFromConfig(config any) (string, error) {
	return reflectSchema(&jsonschema.Reflector{}, config)
}

// GetInlineSchema returns the JSON schema of config with every nested struct
// expanded in place. Form renderers that cannot follow $ref use this one.
func GetInlineSchema(config any) (string, error) {
	return reflectSchema(&jsonschema.Reflector{DoNotReference: true}, config)
}

func reflectSchema(r *jsonschema.Reflector, config any) (string, error) {
	schema := r.Reflect(config)

	out, err := json.Marshal(schema)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to marshal json schema", err)
	}

	return string(out), nil
}
