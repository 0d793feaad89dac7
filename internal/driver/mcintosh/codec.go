// internal/driver/mcintosh/codec.go
package mcintosh

import (
	"strconv"
	"strings"

	"mcintosh-service/pkg/driver"
)

// Every decoder returns nil when the reply does not carry the expected
// prefix or the payload does not parse.

// payload finds prefix in resp and returns the text up to the next ')' and
// whatever follows it.
func payload(resp, prefix string) (inner, rest string, ok bool) {
	resp = strings.TrimRight(resp, "\r")
	i := strings.Index(resp, prefix)
	if i < 0 {
		return "", "", false
	}
	body := resp[i+len(prefix):]
	end := strings.IndexByte(body, ')')
	if end < 0 {
		return "", "", false
	}
	return body[:end], body[end+1:], true
}

// DecodeBool parses "PREFIX(1)" or "PREFIX(0)"
func DecodeBool(resp string, prefixes ...string) *bool {
	for _, prefix := range prefixes {
		inner, _, ok := payload(resp, prefix)
		if !ok {
			continue
		}
		var v bool
		switch strings.TrimSpace(inner) {
		case "1":
			v = true
		case "0":
			v = false
		default:
			return nil
		}
		return &v
	}
	return nil
}

// DecodeInt parses a signed integer payload. The first matching prefix wins.
func DecodeInt(resp string, prefixes ...string) *int {
	for _, prefix := range prefixes {
		inner, _, ok := payload(resp, prefix)
		if !ok {
			continue
		}
		v, err := strconv.Atoi(strings.TrimSpace(inner))
		if err != nil {
			return nil
		}
		return &v
	}
	return nil
}

// DecodeSource parses `PREFIX(n)` with an optional trailing quoted name.
// Without a name the source table is consulted.
func DecodeSource(resp, prefix string) *driver.Source {
	inner, rest, ok := payload(resp, prefix)
	if !ok {
		return nil
	}
	index, err := strconv.Atoi(strings.TrimSpace(inner))
	if err != nil {
		return nil
	}
	src := &driver.Source{Index: index}
	if name := strings.Trim(strings.TrimSpace(rest), `"`); name != "" {
		src.Name = name
	} else if name, ok := SourceName(index); ok {
		src.Name = name
	}
	return src
}

// DecodeRange parses "PREFIX(min,max)"
func DecodeRange(resp, prefix string) *driver.Range {
	inner, _, ok := payload(resp, prefix)
	if !ok {
		return nil
	}
	parts := strings.Split(inner, ",")
	if len(parts) != 2 {
		return nil
	}
	lo, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil
	}
	hi, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil
	}
	return &driver.Range{Min: lo, Max: hi}
}

// DecodeText returns the raw payload
func DecodeText(resp, prefix string) *string {
	inner, _, ok := payload(resp, prefix)
	if !ok {
		return nil
	}
	return &inner
}

// IsPong reports whether resp answers a ping
func IsPong(resp string) bool {
	return strings.TrimSpace(resp) == pong
}
