package middleware

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateMessageContent(t *testing.T) {
	assert.NoError(t, ValidateMessageContent("hello"))
	assert.Error(t, ValidateMessageContent(""))
	assert.Error(t, ValidateMessageContent(strings.Repeat("a", 100001)))
	assert.Error(t, ValidateMessageContent(string([]byte{0xff, 0xfe})))
}

func TestValidateIssueID(t *testing.T) {
	id, err := ValidateIssueID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, raw := range []string{"", "abc", "0", "-1", "1.5"} {
		_, err := ValidateIssueID(raw)
		assert.Error(t, err, "input %q", raw)
	}
}

func TestValidateTitle(t *testing.T) {
	assert.NoError(t, ValidateTitle("Reasonable title"))
	assert.NoError(t, ValidateTitle(""))
	assert.Error(t, ValidateTitle(strings.Repeat("t", 257)))
	assert.Error(t, ValidateTitle(string([]byte{0xff})))
}
