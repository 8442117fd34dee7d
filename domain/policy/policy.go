package policy

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/reglet-dev/zendext-sdk/domain/ports"
)

var _ ports.IniPolicy = (*IniPolicy)(nil)

// policyConfig holds configuration for the IniPolicy.
type policyConfig struct {
	deny          []string
	denialHandler DenialHandler
}

func defaultPolicyConfig() policyConfig {
	return policyConfig{
		denialHandler: &LogDenialHandler{},
	}
}

// PolicyOption configures the IniPolicy.
type PolicyOption func(*policyConfig)

// WithDeny adds patterns that are refused even when an allow pattern matches.
func WithDeny(patterns ...string) PolicyOption {
	return func(c *policyConfig) {
		c.deny = append(c.deny, patterns...)
	}
}

// WithDenialHandler sets the denial handler.
func WithDenialHandler(h DenialHandler) PolicyOption {
	return func(c *policyConfig) {
		c.denialHandler = h
	}
}

// IniPolicy is a glob allow-list of configuration directive names.
// Patterns use doublestar syntax, so "opcache.*" allows every opcache directive
// and "*" allows everything. It is immutable after construction.
type IniPolicy struct {
	config  policyConfig
	allow   []string
	deny    []string
	invalid []string
}

// NewIniPolicy compiles the allow patterns. Malformed patterns never match and
// are reported by Invalid.
func NewIniPolicy(allow []string, opts ...PolicyOption) *IniPolicy {
	cfg := defaultPolicyConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	p := &IniPolicy{config: cfg}
	p.allow = p.compile(allow)
	p.deny = p.compile(cfg.deny)
	return p
}

// AllowAll returns a policy accepting every directive.
func AllowAll() *IniPolicy {
	return NewIniPolicy([]string{"*"}, WithDenialHandler(&NopDenialHandler{}))
}

func (p *IniPolicy) compile(patterns []string) []string {
	var out []string
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if !doublestar.ValidatePattern(pattern) {
			p.invalid = append(p.invalid, pattern)
			continue
		}
		out = append(out, pattern)
	}
	return out
}

// Invalid returns the patterns that were dropped because they do not compile.
func (p *IniPolicy) Invalid() []string {
	return p.invalid
}

// AllowIni reports whether the directive name may be written.
func (p *IniPolicy) AllowIni(name string) bool {
	if name == "" {
		p.config.denialHandler.OnDenial("ini", name, "empty directive name")
		return false
	}

	if pattern, ok := match(p.deny, name); ok {
		p.config.denialHandler.OnDenial("ini", name, "denied by "+pattern)
		return false
	}
	if _, ok := match(p.allow, name); ok {
		return true
	}

	p.config.denialHandler.OnDenial("ini", name, "directive not allowed")
	return false
}

func match(patterns []string, name string) (string, bool) {
	for _, pattern := range patterns {
		if matched, _ := doublestar.Match(pattern, name); matched {
			return pattern, true
		}
	}
	return "", false
}
