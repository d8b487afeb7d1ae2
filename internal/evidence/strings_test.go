package evidence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractStrings(t *testing.T) {
	data := []byte("\x00\x01https://example.com\x00ab\x02\x03token=secret\xff<b>\x00long-enough\x00")

	got := ExtractStrings(data)

	assert.Contains(t, got, "https://example.com")
	assert.Contains(t, got, "token=secret")
	assert.Contains(t, got, "long-enough")
	// Runs shorter than four printable bytes are skipped.
	assert.NotContains(t, got, "ab")
	for _, s := range got {
		assert.NotContains(t, s, "<", "strings must be escaped: %q", s)
	}
}

func TestExtractStrings_Deduplicates(t *testing.T) {
	data := []byte("repeat\x00repeat\x00repeat\x00")
	assert.Equal(t, []string{"repeat"}, ExtractStrings(data))
}

func TestExtractStrings_Idempotent(t *testing.T) {
	data := []byte("alpha\x00beta\x01gamma delta\x02")
	assert.Equal(t, ExtractStrings(data), ExtractStrings(data))
}

func TestExtractStrings_Empty(t *testing.T) {
	assert.Empty(t, ExtractStrings(nil))
	assert.Empty(t, ExtractStrings([]byte{0x00, 0x01, 0x02}))
}
