// Package schema provides JSON schema generation and the schema registry
// used to validate raw manifest documents.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/reglet-dev/zendext-sdk/domain/entities"
	sdkErrors "github.com/reglet-dev/zendext-sdk/domain/errors"
)

// KindManifest is the registry kind of the extension manifest document.
const KindManifest = "extension-manifest"

func newReflector() *jsonschema.Reflector {
	return &jsonschema.Reflector{
		ExpandedStruct: true,
		Anonymous:      true,
	}
}

// GenerateSchema creates a Draft 2020-12 JSON schema from a Go struct.
// Unknown properties are rejected and fields without omitempty are required.
func GenerateSchema(v interface{}) ([]byte, error) {
	schema := newReflector().Reflect(v)

	jsonBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, &sdkErrors.SchemaError{Type: fmt.Sprintf("%T", v), Err: fmt.Errorf("failed to marshal schema: %w", err)}
	}
	return jsonBytes, nil
}

// ManifestSchema returns the schema of entities.ExtensionManifest.
func ManifestSchema() ([]byte, error) {
	return GenerateSchema(&entities.ExtensionManifest{})
}
