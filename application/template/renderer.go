package template

import (
	"bytes"
	"fmt"
	"strconv"
	"text/template"

	sdkErrors "github.com/reglet-dev/zendext-sdk/domain/errors"
	"github.com/reglet-dev/zendext-sdk/domain/ports"
)

// templateConfig holds configuration for the GoTemplateEngine.
type templateConfig struct {
	strict bool // Fail on missing keys
	funcs  template.FuncMap
}

func defaultTemplateConfig() templateConfig {
	return templateConfig{
		strict: true,
		funcs: template.FuncMap{
			"default": defaultValue,
			"quote":   strconv.Quote,
		},
	}
}

// TemplateOption configures a GoTemplateEngine.
type TemplateOption func(*templateConfig)

// WithStrict enables/disables strict mode for missing keys.
// When enabled (default), rendering fails if a referenced key is missing.
func WithStrict(enabled bool) TemplateOption {
	return func(c *templateConfig) {
		c.strict = enabled
	}
}

// WithFunc adds a template function.
func WithFunc(name string, fn interface{}) TemplateOption {
	return func(c *templateConfig) {
		c.funcs[name] = fn
	}
}

// GoTemplateEngine renders extension.yaml templates with text/template.
// Besides the builtins it provides "default" and "quote".
type GoTemplateEngine struct {
	config templateConfig
}

var _ ports.TemplateEngine = (*GoTemplateEngine)(nil)

// NewGoTemplateEngine creates a new GoTemplateEngine.
func NewGoTemplateEngine(opts ...TemplateOption) *GoTemplateEngine {
	cfg := defaultTemplateConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &GoTemplateEngine{config: cfg}
}

// Render processes the raw manifest bytes. Variables are reachable as {{.config.key}}.
func (e *GoTemplateEngine) Render(raw []byte, config map[string]interface{}) ([]byte, error) {
	tmpl := template.New("manifest").Funcs(e.config.funcs)
	if e.config.strict {
		tmpl = tmpl.Option("missingkey=error")
	}

	tmpl, err := tmpl.Parse(string(raw))
	if err != nil {
		return nil, &sdkErrors.ConfigError{Err: fmt.Errorf("failed to parse manifest template: %w", err)}
	}

	var buf bytes.Buffer
	data := map[string]interface{}{
		"config": config,
	}
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, &sdkErrors.ConfigError{Err: fmt.Errorf("failed to execute manifest template: %w", err)}
	}

	return buf.Bytes(), nil
}

// defaultValue returns fallback when value is nil or the empty string.
// Pipeline form: {{.config.port | default 8080}}.
func defaultValue(fallback, value interface{}) interface{} {
	if value == nil {
		return fallback
	}
	if s, ok := value.(string); ok && s == "" {
		return fallback
	}
	return value
}
