// Package records resolves change-feed locators into organisation records
// ready to be embedded in the output document.
package records

import (
	"bytes"
	"context"
	"strings"

	"github.com/agentstation/ordsync/internal/sources"
	"github.com/agentstation/ordsync/internal/transport"
	"github.com/agentstation/ordsync/pkg/errors"
	"github.com/agentstation/ordsync/pkg/logging"
	"github.com/agentstation/ordsync/pkg/refdata"
)

// Resolver dereferences one locator.
type Resolver interface {
	Resolve(ctx context.Context, index int, locator string) (refdata.Record, error)
}

// HTTPResolver fetches records over HTTP.
type HTTPResolver struct {
	fetcher sources.Fetcher
}

// NewResolver returns a resolver issuing requests through f.
func NewResolver(f sources.Fetcher) *HTTPResolver {
	return &HTTPResolver{fetcher: f}
}

// Resolve fetches locator and returns its record as UTF-8 fragment text with
// the XML declaration removed and apostrophes escaped.
func (r *HTTPResolver) Resolve(ctx context.Context, index int, locator string) (refdata.Record, error) {
	resp, err := r.fetcher.Get(ctx, sources.OpResolve, locator)
	if err != nil {
		return refdata.Record{}, err
	}

	body, err := transport.ToUTF8(resp.Body, resp.Charset())
	if err != nil {
		return refdata.Record{}, errors.WrapParse("xml", locator, err)
	}

	content := strings.TrimSpace(EscapeApostrophes(StripProlog(string(body))))
	if content == "" {
		return refdata.Record{}, errors.NewParseError("xml", locator, "record is empty", nil)
	}

	logging.FromContext(ctx).Debug().
		Int("index", index).
		Str("locator", locator).
		Int("bytes", len(content)).
		Msg("Record resolved")

	return refdata.Record{Index: index, Locator: locator, Content: content}, nil
}

// StripProlog removes a leading byte order mark and XML declaration. Nothing
// else is altered.
func StripProlog(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	trimmed := strings.TrimLeft(s, " \t\r\n")
	if !strings.HasPrefix(trimmed, "<?xml") {
		return s
	}
	// "<?xml-stylesheet" and similar are processing instructions, not the declaration.
	if len(trimmed) > 5 && !isSpace(trimmed[5]) && trimmed[5] != '?' {
		return s
	}
	end := strings.Index(trimmed, "?>")
	if end < 0 {
		return s
	}
	return strings.TrimLeft(trimmed[end+2:], " \t\r\n")
}

// EscapeApostrophes replaces every apostrophe in character data and in
// double-quoted attribute values with &apos;. Markup, single-quoted attribute
// delimiters, comments, CDATA sections and processing instructions are copied
// unchanged.
func EscapeApostrophes(s string) string {
	if !strings.Contains(s, "'") {
		return s
	}

	var b bytes.Buffer
	b.Grow(len(s) + 16)

	for i := 0; i < len(s); {
		switch {
		case strings.HasPrefix(s[i:], "<!--"):
			i = copyThrough(&b, s, i, "-->")
		case strings.HasPrefix(s[i:], "<![CDATA["):
			i = copyThrough(&b, s, i, "]]>")
		case strings.HasPrefix(s[i:], "<?"):
			i = copyThrough(&b, s, i, "?>")
		case strings.HasPrefix(s[i:], "<!"):
			i = copyThrough(&b, s, i, ">")
		case s[i] == '<':
			i = copyTag(&b, s, i)
		case s[i] == '\'':
			b.WriteString("&apos;")
			i++
		default:
			b.WriteByte(s[i])
			i++
		}
	}
	return b.String()
}

// copyThrough copies s[i:] up to and including terminator.
func copyThrough(b *bytes.Buffer, s string, i int, terminator string) int {
	end := strings.Index(s[i:], terminator)
	if end < 0 {
		b.WriteString(s[i:])
		return len(s)
	}
	end = i + end + len(terminator)
	b.WriteString(s[i:end])
	return end
}

// copyTag copies one start or end tag, escaping apostrophes inside
// double-quoted attribute values.
func copyTag(b *bytes.Buffer, s string, i int) int {
	var quote byte
	for ; i < len(s); i++ {
		c := s[i]
		switch {
		case quote == 0 && c == '>':
			b.WriteByte(c)
			return i + 1
		case quote == 0 && (c == '"' || c == '\''):
			quote = c
			b.WriteByte(c)
		case quote != 0 && c == quote:
			quote = 0
			b.WriteByte(c)
		case quote == '"' && c == '\'':
			b.WriteString("&apos;")
		default:
			b.WriteByte(c)
		}
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
