package sdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/reglet-dev/zendext-sdk/domain/entities"
	sdkErrors "github.com/reglet-dev/zendext-sdk/domain/errors"
)

// validate is a package-level singleton; building a validator caches struct metadata.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, key := range []string{"yaml", "json"} {
			name := strings.SplitN(f.Tag.Get(key), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return ""
	})
	return v
}

// ValidateConfig decodes config into targetStruct and runs its validate tags.
func ValidateConfig(config Config, targetStruct interface{}) error {
	jsonBytes, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config map: %w", err)
	}
	if err := json.Unmarshal(jsonBytes, targetStruct); err != nil {
		return fmt.Errorf("failed to unmarshal config into struct: %w", err)
	}
	return ValidateStruct(targetStruct)
}

// ValidateStruct runs the validate tags of v. The first failing field is
// reported as a *errors.ConfigError named by its YAML path, for example
// "functions[0].args[1].type".
func ValidateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &sdkErrors.ConfigError{
			Field: fieldPath(fe.Namespace()),
			Err:   fmt.Errorf("failed on the '%s' rule", fe.Tag()),
		}
	}
	return &sdkErrors.ConfigError{Err: err}
}

// ValidateManifest checks the structural rules of an extension manifest.
func ValidateManifest(m *entities.ExtensionManifest) error {
	if m == nil {
		return &sdkErrors.ConfigError{Err: errors.New("manifest is nil")}
	}
	return ValidateStruct(m)
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
