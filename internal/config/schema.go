package config

import (
	_ "embed"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	egerrors "github.com/amannirala13/envguard/internal/errors"
)

//go:embed schema/config.v2.schema.json
var v2SchemaJSON []byte

// ValidateV2Document checks a raw v2 config document against the embedded
// JSON schema. It catches shape problems the typed unmarshal would silently
// accept, like unknown fields or a wrongly typed environments list.
func ValidateV2Document(data []byte) error {
	schemaLoader := gojsonschema.NewBytesLoader(v2SchemaJSON)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return egerrors.ConfigError{
			Message:    "configuration is not valid JSON",
			Suggestion: "Check for trailing commas or unquoted keys",
			Err:        err,
		}
	}
	if result.Valid() {
		return nil
	}

	var problems []string
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return egerrors.ConfigError{
		Message:    "configuration does not match the v2 schema: " + strings.Join(problems, "; "),
		Suggestion: "Compare your config against " + SchemaURL,
	}
}
