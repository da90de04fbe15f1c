package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatValue_Plain(t *testing.T) {
	out, err := formatValue(false, "battery", 82, "82%")
	require.NoError(t, err)
	assert.Equal(t, "82%", out)
}

func TestFormatValue_JSON(t *testing.T) {
	out, err := formatValue(true, "battery", 82, "82%")
	require.NoError(t, err)
	assert.JSONEq(t, `{"battery": 82}`, out)
}

func TestFormatValue_JSONList(t *testing.T) {
	out, err := formatValue(true, "ports", []string{"/dev/ttyACM0", "/dev/ttyACM1"}, "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ports": ["/dev/ttyACM0", "/dev/ttyACM1"]}`, out)
}

func TestParseMapping_RejectsNonObject(t *testing.T) {
	_, err := parseMapping([]string{"[1,", "2]"})
	require.Error(t, err)
}

func TestParseMapping_JoinsArgs(t *testing.T) {
	mapping, err := parseMapping([]string{`{"trigger_ms":`, `1000}`})
	require.NoError(t, err)
	assert.Equal(t, float64(1000), mapping["trigger_ms"])
}
