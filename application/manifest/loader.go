// Package manifest loads extension.yaml and turns it into configured builders.
package manifest

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	sdk "github.com/reglet-dev/zendext-sdk"
	"github.com/reglet-dev/zendext-sdk/application/schema"
	"github.com/reglet-dev/zendext-sdk/domain/entities"
	sdkErrors "github.com/reglet-dev/zendext-sdk/domain/errors"
	"github.com/reglet-dev/zendext-sdk/domain/ports"
	"github.com/reglet-dev/zendext-sdk/infrastructure/parser"
)

// Loader renders, validates and parses manifests.
type Loader struct {
	parser    ports.ManifestParser
	renderer  ports.TemplateEngine
	validator ports.ManifestValidator
	logger    *slog.Logger
}

// LoaderOption configures the Loader.
type LoaderOption func(*Loader)

// WithParser sets the manifest parser.
func WithParser(p ports.ManifestParser) LoaderOption {
	return func(l *Loader) {
		l.parser = p
	}
}

// WithTemplateEngine renders the manifest before parsing.
func WithTemplateEngine(t ports.TemplateEngine) LoaderOption {
	return func(l *Loader) {
		l.renderer = t
	}
}

// WithValidator checks the raw document against the manifest schema before
// it is decoded.
func WithValidator(v ports.ManifestValidator) LoaderOption {
	return func(l *Loader) {
		l.validator = v
	}
}

// WithLogger sets the logger for load diagnostics.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a Loader. The default parser is the strict YAML parser;
// rendering and schema validation are off unless configured.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		parser: parser.NewYamlManifestParser(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadFile reads and loads the manifest at path.
func (l *Loader) LoadFile(path string, vars map[string]interface{}) (*entities.ExtensionManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &sdkErrors.ConfigError{Err: fmt.Errorf("read manifest: %w", err)}
	}
	return l.Load(data, vars)
}

// Load renders raw with vars, validates it and decodes it. Every failure is a
// *errors.ConfigError or *errors.SchemaError.
func (l *Loader) Load(raw []byte, vars map[string]interface{}) (*entities.ExtensionManifest, error) {
	if l.parser == nil {
		return nil, &sdkErrors.ConfigError{Err: errors.New("manifest parser is required")}
	}

	data := raw
	if l.renderer != nil {
		var err error
		if data, err = l.renderer.Render(raw, vars); err != nil {
			return nil, err
		}
	}

	if l.validator != nil {
		doc, err := parser.ParseDocument(data)
		if err != nil {
			return nil, err
		}
		result, err := l.validator.Validate(schema.KindManifest, doc)
		if err != nil {
			return nil, err
		}
		if !result.Valid {
			for _, e := range result.Errors {
				l.logger.Debug("manifest schema violation", "field", e.Field, "message", e.Message)
			}
			first := result.Errors[0]
			return nil, &sdkErrors.ConfigError{Field: first.Field, Err: errors.New(first.Message)}
		}
	}

	m, err := l.parser.Parse(data)
	if err != nil {
		return nil, err
	}
	if err := sdk.ValidateManifest(m); err != nil {
		return nil, err
	}

	l.logger.Debug("manifest loaded", "name", m.Name, "version", m.Version, "functions", len(m.Functions))
	return m, nil
}
