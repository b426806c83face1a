package logging

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/ordsync/pkg/constants"
	"github.com/agentstation/ordsync/pkg/errors"
)

// AuditWriter is a zerolog sink that renders each JSON event as one
// comma-delimited line: timestamp, message, then key=value pairs for the
// remaining fields in key order. Fields holding commas are quoted.
type AuditWriter struct {
	mu     sync.Mutex
	out    io.Writer
	closer io.Closer
	now    func() time.Time
}

// reserved fields are rendered positionally or dropped.
var reserved = map[string]bool{
	zerolog.TimestampFieldName: true,
	zerolog.MessageFieldName:   true,
	zerolog.CallerFieldName:    true,
}

// NewAuditWriter wraps w. The caller owns w.
func NewAuditWriter(w io.Writer) *AuditWriter {
	return &AuditWriter{out: w, now: time.Now}
}

// OpenAudit opens path for appending, creating it if needed.
func OpenAudit(path string) (*AuditWriter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	a := NewAuditWriter(f)
	a.closer = f
	return a, nil
}

// Write implements io.Writer.
func (a *AuditWriter) Write(p []byte) (int, error) {
	record := a.render(p)

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(record); err != nil {
		return 0, err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := a.out.Write(buf.Bytes()); err != nil {
		return 0, err
	}
	return len(p), nil
}

// WriteLevel implements zerolog.LevelWriter.
func (a *AuditWriter) WriteLevel(_ zerolog.Level, p []byte) (int, error) {
	return a.Write(p)
}

// Close closes the underlying file when the writer was opened by OpenAudit.
func (a *AuditWriter) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

func (a *AuditWriter) render(p []byte) []string {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(bytes.TrimSpace(p), &fields); err != nil {
		return []string{a.now().Format(constants.TimeFormatLog), string(bytes.TrimSpace(p))}
	}

	ts := rawString(fields[zerolog.TimestampFieldName])
	if ts == "" {
		ts = a.now().Format(constants.TimeFormatLog)
	}
	record := []string{ts, rawString(fields[zerolog.MessageFieldName])}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		if !reserved[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		record = append(record, k+"="+rawString(fields[k]))
	}
	return record
}

// rawString returns JSON strings unquoted and any other value verbatim.
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
