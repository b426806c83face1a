package cursor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/ordsync/pkg/cursor"
	"github.com/agentstation/ordsync/pkg/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		compact string
	}{
		{"iso date", "2019-06-12", "2019-06-12", "20190612"},
		{"compact date", "20190612", "2019-06-12", "20190612"},
		{"single hyphen", "2019-0612", "2019-06-12", "20190612"},
		{"surrounding space", " 2019-06-12\n", "2019-06-12", "20190612"},
		{"first day", "2020-01-01", "2020-01-01", "20200101"},
		{"day 31", "2020-12-31", "2020-12-31", "20201231"},
		{"day 20s", "2021-02-28", "2021-02-28", "20210228"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := cursor.Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.String())
			assert.Equal(t, tt.compact, c.Compact())
			assert.False(t, c.IsZero())
		})
	}
}

func TestParseRejects(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"15-13-2019",
		"2019-13-01",
		"2019-00-10",
		"2019-06-00",
		"2019-06-32",
		"2019-6-12",
		"19-06-12",
		"2019/06/12",
		"2019-06-12T00:00:00",
		"yesterday",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := cursor.Parse(input)
			require.Error(t, err)
			assert.True(t, errors.IsInvalidCursor(err))
			assert.ErrorIs(t, err, errors.ErrInvalidInput)
			assert.False(t, cursor.Valid(input))

			var ice *errors.InvalidCursorError
			require.ErrorAs(t, err, &ice)
			assert.Equal(t, input, ice.Value)
		})
	}
}

func TestMustParse(t *testing.T) {
	assert.Equal(t, "2019-06-12", cursor.MustParse("20190612").String())
	assert.Equal(t, "20190612", cursor.MustParse("20190612").Raw())
	assert.Panics(t, func() { cursor.MustParse("15-13-2019") })
}

func TestZero(t *testing.T) {
	assert.True(t, cursor.Cursor{}.IsZero())
}
