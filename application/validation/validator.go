package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/reglet-dev/zendext-sdk/domain/entities"
	sdkErrors "github.com/reglet-dev/zendext-sdk/domain/errors"
	"github.com/reglet-dev/zendext-sdk/domain/ports"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

var _ ports.ManifestValidator = (*SchemaValidator)(nil)

// SchemaValidator validates raw documents against the schemas of a registry.
// Compiled schemas are cached per kind.
type SchemaValidator struct {
	registry ports.SchemaRegistry

	mu       sync.Mutex
	compiled map[string]*jsonschema.Schema
}

// NewSchemaValidator creates a validator reading schemas from registry.
func NewSchemaValidator(registry ports.SchemaRegistry) *SchemaValidator {
	return &SchemaValidator{
		registry: registry,
		compiled: make(map[string]*jsonschema.Schema),
	}
}

func (v *SchemaValidator) schema(kind string) (*jsonschema.Schema, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if sch, ok := v.compiled[kind]; ok {
		return sch, nil
	}

	schemaStr, ok := v.registry.GetSchema(kind)
	if !ok {
		return nil, &sdkErrors.SchemaError{Type: kind, Err: fmt.Errorf("no schema registered for %s", kind)}
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(kind, strings.NewReader(schemaStr)); err != nil {
		return nil, &sdkErrors.SchemaError{Type: kind, Err: fmt.Errorf("failed to add schema resource: %w", err)}
	}
	sch, err := compiler.Compile(kind)
	if err != nil {
		return nil, &sdkErrors.SchemaError{Type: kind, Err: fmt.Errorf("invalid schema: %w", err)}
	}
	v.compiled[kind] = sch
	return sch, nil
}

// Validate checks document against the schema registered for kind. Schema
// violations are reported in the result; a missing or broken schema is an error.
func (v *SchemaValidator) Validate(kind string, document any) (*entities.ValidationResult, error) {
	sch, err := v.schema(kind)
	if err != nil {
		return nil, err
	}

	obj, err := normalize(document)
	if err != nil {
		return nil, &sdkErrors.SchemaError{Type: kind, Err: fmt.Errorf("failed to prepare validation object: %w", err)}
	}

	result := &entities.ValidationResult{Valid: true}
	if err := sch.Validate(obj); err != nil {
		result.Valid = false
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			for _, unit := range ve.BasicOutput().Errors {
				if unit.Error == "" || strings.HasPrefix(unit.Error, "doesn't validate with") {
					continue
				}
				result.Errors = append(result.Errors, entities.ValidationError{
					Field:   fieldFromPointer(unit.InstanceLocation),
					Message: unit.Error,
				})
			}
		}
		if len(result.Errors) == 0 {
			result.Errors = append(result.Errors, entities.ValidationError{Field: kind, Message: err.Error()})
		}
	}
	return result, nil
}

// normalize round-trips document through JSON so YAML scalars, typed slices
// and structs reach the schema in their JSON form.
func normalize(document any) (any, error) {
	b, err := json.Marshal(document)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// fieldFromPointer turns "/functions/0/name" into "functions[0].name".
func fieldFromPointer(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return "."
	}

	var b strings.Builder
	for i, part := range strings.Split(ptr, "/") {
		if isIndex(part) {
			b.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
