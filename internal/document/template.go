package document

import (
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/agentstation/ordsync/internal/embedded"
	"github.com/agentstation/ordsync/pkg/constants"
	"github.com/agentstation/ordsync/pkg/errors"
	"github.com/agentstation/ordsync/pkg/refdata"
)

// Manifest placeholders. $DateTime is substituted before $Date.
const (
	PlaceholderDateTime = "$DateTime"
	PlaceholderDate     = "$Date"
	PlaceholderRecords  = "$Records"
)

// Template is the static document header: the XML declaration, the root
// element and the opening of the manifest up to its computed fields.
type Template struct {
	text   string
	source string
}

// DefaultTemplate returns the embedded manifest template.
func DefaultTemplate() (*Template, error) {
	data, err := embedded.FS.ReadFile(embedded.ManifestTemplate)
	if err != nil {
		return nil, errors.NewMissingTemplateResourceError(embedded.ManifestTemplate, "", err)
	}
	return NewTemplate(embedded.ManifestTemplate, string(data))
}

// LoadTemplate reads a template from path on fs. An empty path selects the
// embedded template.
func LoadTemplate(fs afero.Fs, path string) (*Template, error) {
	if path == "" {
		return DefaultTemplate()
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.NewMissingTemplateResourceError(path, "", err)
	}
	return NewTemplate(path, string(data))
}

// NewTemplate validates text. Every placeholder must be present.
func NewTemplate(source, text string) (*Template, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.NewMissingTemplateResourceError(source, "template is empty", nil)
	}
	// $Date is a prefix of $DateTime, so look for it with $DateTime removed.
	withoutDateTime := strings.ReplaceAll(text, PlaceholderDateTime, "")
	for _, check := range []struct {
		placeholder string
		text        string
	}{
		{PlaceholderDateTime, text},
		{PlaceholderDate, withoutDateTime},
		{PlaceholderRecords, text},
	} {
		if !strings.Contains(check.text, check.placeholder) {
			return nil, errors.NewMissingTemplateResourceError(source, "placeholder "+check.placeholder+" not found", nil)
		}
	}
	return &Template{text: text, source: source}, nil
}

// Source names where the template was loaded from.
func (t *Template) Source() string {
	return t.source
}

// Render substitutes the computed manifest fields.
func (t *Template) Render(m refdata.Manifest) string {
	out := strings.ReplaceAll(t.text, PlaceholderDateTime, m.FileCreationDateTime.Format(constants.TimeFormatDateTime))
	out = strings.ReplaceAll(out, PlaceholderDate, m.PublicationDate.Format(constants.TimeFormatDate))
	return strings.ReplaceAll(out, PlaceholderRecords, strconv.Itoa(m.RecordCount))
}
