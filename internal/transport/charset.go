package transport

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"regexp"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

var declEncoding = regexp.MustCompile(`^\s*<\?xml[^>]*?\sencoding\s*=\s*["']([A-Za-z0-9._:-]+)["']`)

// DeclaredCharset returns the encoding named in the XML declaration of body,
// or "" when there is none.
func DeclaredCharset(body []byte) string {
	head := body
	if end := bytes.Index(head, []byte("?>")); end >= 0 {
		head = head[:end+2]
	}
	head = bytes.TrimPrefix(head, []byte("\xef\xbb\xbf"))
	if m := declEncoding.FindSubmatch(head); m != nil {
		return string(m[1])
	}
	return ""
}

func mediaCharset(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return params["charset"]
}

// isUTF8 reports whether label names UTF-8 or is empty.
func isUTF8(label string) bool {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "utf-8", "utf8", "us-ascii", "ascii":
		return true
	}
	return false
}

func lookup(label string) (encoding.Encoding, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, fmt.Errorf("unknown charset %q: %w", label, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
	return enc, nil
}

// CharsetReader converts input in the named charset to UTF-8. Its signature
// matches xml.Decoder.CharsetReader.
func CharsetReader(label string, input io.Reader) (io.Reader, error) {
	if isUTF8(label) {
		return input, nil
	}
	enc, err := lookup(label)
	if err != nil {
		return nil, err
	}
	return enc.NewDecoder().Reader(input), nil
}

// ToUTF8 returns body transcoded from the named charset to UTF-8.
func ToUTF8(body []byte, label string) ([]byte, error) {
	if isUTF8(label) {
		return body, nil
	}
	enc, err := lookup(label)
	if err != nil {
		return nil, err
	}
	return enc.NewDecoder().Bytes(body)
}
