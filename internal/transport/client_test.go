package transport

import (
	"context"
	"encoding/xml"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/ordsync/pkg/constants"
	"github.com/agentstation/ordsync/pkg/errors"
)

func TestNewDefaults(t *testing.T) {
	c := New(nil)
	assert.Equal(t, constants.DefaultHTTPTimeout, c.http.Timeout)
	assert.Equal(t, constants.DefaultUserAgent, c.userAgent)

	c = New(&Config{Timeout: -1, RateBurst: 0})
	assert.Equal(t, constants.DefaultHTTPTimeout, c.http.Timeout)
	assert.Equal(t, constants.DefaultRateBurst, c.limiter.Burst())
}

func TestGet(t *testing.T) {
	t.Run("returns body and headers", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "application/xml", r.Header.Get("Accept"))
			assert.Equal(t, "ordsync/test", r.Header.Get("User-Agent"))
			w.Header().Set(constants.TotalCountHeader, "2")
			_, _ = w.Write([]byte("<Organisations/>"))
		}))
		defer server.Close()

		c := New(&Config{UserAgent: "ordsync/test"})
		resp, err := c.Get(context.Background(), "query", server.URL)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "2", resp.Header.Get(constants.TotalCountHeader))
		assert.Equal(t, "<Organisations/>", string(resp.Body))
	})

	t.Run("non-2xx status is a transport error", func(t *testing.T) {
		tests := []struct {
			status      int
			unavailable bool
			rateLimited bool
		}{
			{http.StatusNotFound, false, false},
			{http.StatusTooManyRequests, false, true},
			{http.StatusServiceUnavailable, true, false},
		}
		for _, tt := range tests {
			t.Run(http.StatusText(tt.status), func(t *testing.T) {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					w.WriteHeader(tt.status)
				}))
				defer server.Close()

				_, err := New(nil).Get(context.Background(), "resolve", server.URL)
				require.Error(t, err)
				assert.True(t, errors.IsTransport(err))
				assert.Equal(t, tt.unavailable, errors.Is(err, errors.ErrUnavailable))
				assert.Equal(t, tt.rateLimited, errors.IsRateLimited(err))

				var te *errors.TransportError
				require.ErrorAs(t, err, &te)
				assert.Equal(t, tt.status, te.StatusCode)
				assert.Equal(t, "resolve", te.Operation)
				assert.Equal(t, server.URL, te.URL)
			})
		}
	})

	t.Run("connection failure is a transport error", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		_, err := New(nil).Get(context.Background(), "taxonomy", url)
		require.Error(t, err)
		assert.True(t, errors.IsTransport(err))
	})

	t.Run("canceled context", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("late"))
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := New(nil).Get(ctx, "query", server.URL)
		require.Error(t, err)
		assert.True(t, errors.IsTransport(err))
		assert.True(t, errors.IsCanceled(err))
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := New(nil).Get(ctx, "query", server.URL)
		require.Error(t, err)
		assert.True(t, errors.IsTimeout(err))
	})

	t.Run("invalid url", func(t *testing.T) {
		_, err := New(nil).Get(context.Background(), "query", "://bad")
		require.Error(t, err)
		assert.True(t, errors.IsTransport(err))
	})
}

func TestResponseCharset(t *testing.T) {
	tests := []struct {
		name   string
		header string
		body   string
		want   string
	}{
		{"header wins", "application/xml; charset=ISO-8859-1", `<?xml version="1.0" encoding="UTF-8"?><a/>`, "ISO-8859-1"},
		{"declaration", "application/xml", `<?xml version="1.0" encoding="ISO-8859-1"?><a/>`, "ISO-8859-1"},
		{"single quoted declaration", "", `<?xml version='1.0' encoding='windows-1252'?><a/>`, "windows-1252"},
		{"no declaration", "", `<a/>`, ""},
		{"declaration without encoding", "", `<?xml version="1.0"?><a encoding="x"/>`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Response{Header: http.Header{}, Body: []byte(tt.body)}
			if tt.header != "" {
				r.Header.Set("Content-Type", tt.header)
			}
			assert.Equal(t, tt.want, r.Charset())
		})
	}
}

func TestToUTF8(t *testing.T) {
	t.Run("latin1 is transcoded", func(t *testing.T) {
		out, err := ToUTF8([]byte("caf\xe9"), "ISO-8859-1")
		require.NoError(t, err)
		assert.Equal(t, "café", string(out))
	})

	t.Run("utf-8 passes through", func(t *testing.T) {
		in := []byte("café")
		out, err := ToUTF8(in, "UTF-8")
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("unknown charset", func(t *testing.T) {
		_, err := ToUTF8([]byte("x"), "not-a-charset")
		assert.Error(t, err)
	})
}

func TestCharsetReaderWithXMLDecoder(t *testing.T) {
	doc := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><name>Caf\xe9 &amp; Bar</name>"

	var name string
	dec := xml.NewDecoder(strings.NewReader(doc))
	dec.CharsetReader = CharsetReader
	require.NoError(t, dec.Decode(&name))
	assert.Equal(t, "Café & Bar", name)
}
