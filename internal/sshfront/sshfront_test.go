package sshfront

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeUint32(n uint32) []byte {
	return []byte{byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)}
}

func TestParseWindowChangeDecodesFourFields(t *testing.T) {
	payload := append(append(append(
		encodeUint32(80), encodeUint32(24)...), encodeUint32(640)...), encodeUint32(480)...)
	cols, rows, xpix, ypix, ok := parseWindowChange(payload)
	require.True(t, ok)
	assert.Equal(t, 80, cols)
	assert.Equal(t, 24, rows)
	assert.Equal(t, 640, xpix)
	assert.Equal(t, 480, ypix)
}

func TestParsePtyReqSkipsLeadingTermString(t *testing.T) {
	term := "xterm-256color"
	payload := append(encodeUint32(uint32(len(term))), []byte(term)...)
	payload = append(payload, encodeUint32(100)...)
	payload = append(payload, encodeUint32(40)...)
	payload = append(payload, encodeUint32(800)...)
	payload = append(payload, encodeUint32(600)...)

	cols, rows, xpix, ypix, ok := parsePtyReq(payload)
	require.True(t, ok)
	assert.Equal(t, 100, cols)
	assert.Equal(t, 40, rows)
	assert.Equal(t, 800, xpix)
	assert.Equal(t, 600, ypix)
}

func TestParseWindowChangeRejectsShortPayload(t *testing.T) {
	_, _, _, _, ok := parseWindowChange([]byte{1, 2, 3})
	assert.False(t, ok)
}
