package builders

import (
	"bytes"
	"errors"
	"strings"

	"github.com/reglet-dev/zendext-sdk/domain/entities"
	sdkErrors "github.com/reglet-dev/zendext-sdk/domain/errors"
)

// IniBuilder accumulates configuration directives in the host's INI text
// format, one directive per line. The finished block is usually attached to a
// SAPI record as its ini_entries.
type IniBuilder struct {
	seal
	alloc   StringAllocator
	buf     bytes.Buffer
	touched bool
}

// NewIniBuilder creates an empty INI builder.
func NewIniBuilder(alloc StringAllocator) *IniBuilder {
	return &IniBuilder{alloc: alloc}
}

// Prepend inserts raw text in front of everything appended so far. The text
// is used as-is; callers supply their own line endings.
func (b *IniBuilder) Prepend(raw string) *IniBuilder {
	if b.consumed() {
		return b
	}
	b.touched = true
	rest := append([]byte(nil), b.buf.Bytes()...)
	b.buf.Reset()
	b.buf.WriteString(raw)
	b.buf.Write(rest)
	return b
}

// Unquoted appends name=value.
func (b *IniBuilder) Unquoted(name, value string) *IniBuilder {
	if b.consumed() {
		return b
	}
	b.touched = true
	b.buf.WriteString(name)
	b.buf.WriteByte('=')
	b.buf.WriteString(value)
	b.buf.WriteByte('\n')
	return b
}

// Quoted appends name="value".
func (b *IniBuilder) Quoted(name, value string) *IniBuilder {
	if b.consumed() {
		return b
	}
	b.touched = true
	b.buf.WriteString(name)
	b.buf.WriteString(`="`)
	b.buf.WriteString(value)
	b.buf.WriteString("\"\n")
	return b
}

// Define appends a directive given in command-line form. "name=value" is
// written unquoted when the value starts with an alphanumeric character or a
// quote and quoted otherwise; a bare "name" is written as name=1.
func (b *IniBuilder) Define(directive string) *IniBuilder {
	name, value, ok := strings.Cut(directive, "=")
	if !ok {
		return b.Unquoted(directive, "1")
	}
	if value != "" && !isAlnum(value[0]) && value[0] != '"' && value[0] != '\'' {
		return b.Quoted(name, value)
	}
	return b.Unquoted(name, value)
}

func isAlnum(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// String returns the text accumulated so far.
func (b *IniBuilder) String() string {
	return b.buf.String()
}

// Finish seals the builder and copies the block into host memory. It returns
// the null string if nothing was ever added.
func (b *IniBuilder) Finish() (entities.HostString, error) {
	if err := b.consume(); err != nil {
		return entities.HostString{}, err
	}
	if !b.touched {
		return entities.HostString{}, nil
	}
	s, err := b.alloc.Estrdup(b.buf.Bytes())
	if err != nil {
		var convErr *sdkErrors.StringConversionError
		if errors.As(err, &convErr) {
			return entities.HostString{}, &sdkErrors.StringConversionError{Field: "ini_entries", Position: convErr.Position}
		}
		return entities.HostString{}, err
	}
	return s, nil
}
