package ports

import "github.com/reglet-dev/zendext-sdk/domain/entities"

// ManifestValidator validates a raw manifest document against registered schemas.
type ManifestValidator interface {
	// Validate checks the document of the given kind. The document is the
	// generic decoding of YAML or JSON (maps, slices and scalars).
	Validate(kind string, document any) (*entities.ValidationResult, error)
}
