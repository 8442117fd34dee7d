package builders

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"

	"github.com/reglet-dev/zendext-sdk/domain/entities"
)

// postReadChunk is the buffer size DefaultPostReader hands to the read callback.
const postReadChunk = 8192

// DefaultSapiError is the error callback every SAPI record starts with. It
// reports the event through the default slog logger at a level matching the
// event kind.
func DefaultSapiError(kind entities.ErrorType, message string) {
	level := slog.LevelInfo
	switch {
	case kind.IsFatal():
		level = slog.LevelError
	case kind&(entities.EWarning|entities.ECoreWarning|entities.ECompileWarning|entities.EUserWarning) != 0:
		level = slog.LevelWarn
	}
	slog.Default().Log(context.Background(), level, message, "type", kind.String())
}

// DefaultPostReader drains the request body through read until it reports no
// more data.
func DefaultPostReader(read SapiReadPostFunc) []byte {
	if read == nil {
		return nil
	}
	var body bytes.Buffer
	chunk := make([]byte, postReadChunk)
	for {
		n := read(chunk)
		if n <= 0 {
			break
		}
		body.Write(chunk[:n])
		if n < len(chunk) {
			break
		}
	}
	return body.Bytes()
}

// DefaultTreatData splits query-string or cookie data into variables and
// registers each one through the input filter semantics of the host: names
// and values are URL-decoded, undecodable pairs are skipped.
func DefaultTreatData(source InputSource, data []byte, vars TrackVars) {
	if vars == nil || len(data) == 0 {
		return
	}
	sep := []byte("&")
	if source == ParseCookie {
		sep = []byte(";")
	}
	for _, pair := range bytes.Split(data, sep) {
		pair = bytes.TrimLeft(pair, " ")
		if len(pair) == 0 {
			continue
		}
		name, value, _ := bytes.Cut(pair, []byte("="))
		decodedName, err := url.QueryUnescape(string(name))
		if err != nil || decodedName == "" {
			continue
		}
		decodedValue, err := url.QueryUnescape(string(value))
		if err != nil {
			continue
		}
		vars.Register(decodedName, []byte(decodedValue))
	}
}

// DefaultInputFilter accepts every value unchanged.
func DefaultInputFilter(_ InputSource, _ string, value []byte) ([]byte, bool) {
	return value, true
}

// NoopSendHeader is substituted for an unset send_header callback at build
// time. The host calls send_header unconditionally for every header line.
func NoopSendHeader(_ *SapiHeader, _ any) {}
