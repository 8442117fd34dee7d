package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/reglet-dev/zendext-sdk/domain/entities"
	sdkErrors "github.com/reglet-dev/zendext-sdk/domain/errors"
	"github.com/reglet-dev/zendext-sdk/domain/ports"
	"gopkg.in/yaml.v3"
)

// YamlManifestParser implements ManifestParser for YAML.
type YamlManifestParser struct {
	strict bool
}

// ParserOption configures a YamlManifestParser.
type ParserOption func(*YamlManifestParser)

// WithStrict rejects keys that do not map to a manifest field.
func WithStrict(enabled bool) ParserOption {
	return func(p *YamlManifestParser) {
		p.strict = enabled
	}
}

// NewYamlManifestParser creates a new YamlManifestParser. Parsing is strict by default.
func NewYamlManifestParser(opts ...ParserOption) ports.ManifestParser {
	p := &YamlManifestParser{strict: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse unmarshals YAML bytes into an ExtensionManifest struct.
func (p *YamlManifestParser) Parse(data []byte) (*entities.ExtensionManifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(p.strict)

	var manifest entities.ExtensionManifest
	if err := dec.Decode(&manifest); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &sdkErrors.ConfigError{Err: errors.New("empty manifest")}
		}
		return nil, &sdkErrors.ConfigError{Err: fmt.Errorf("parse manifest: %w", err)}
	}
	return &manifest, nil
}

// ParseDocument decodes YAML into generic maps, slices and scalars, the form
// expected by schema validation.
func ParseDocument(data []byte) (any, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &sdkErrors.ConfigError{Err: fmt.Errorf("parse document: %w", err)}
	}
	return doc, nil
}
