package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineAccumulator_SkipsEchoAndBlankLines(t *testing.T) {
	acc := &lineAccumulator{echo: "cfg get stim"}

	_, ok := acc.feed([]byte("cfg get stim\r\n\r\n"))
	assert.False(t, ok)

	line, ok := acc.feed([]byte("OK: CAEQ6Ac=\r\n"))
	assert.True(t, ok)
	assert.Equal(t, "OK: CAEQ6Ac=", line)
}

func TestLineAccumulator_LineSplitAcrossReads(t *testing.T) {
	acc := &lineAccumulator{}

	_, ok := acc.feed([]byte("OK: 8"))
	assert.False(t, ok)

	line, ok := acc.feed([]byte("2\r\n"))
	assert.True(t, ok)
	assert.Equal(t, "OK: 82", line)
}

func TestLineAccumulator_EchoSkippedOnlyOnce(t *testing.T) {
	acc := &lineAccumulator{echo: "batt"}

	line, ok := acc.feed([]byte("batt\r\nbatt\r\n"))
	assert.True(t, ok)
	assert.Equal(t, "batt", line)
}

func TestLineAccumulator_NoEchoConfigured(t *testing.T) {
	acc := &lineAccumulator{}

	line, ok := acc.feed([]byte("OK: reply\r\n"))
	assert.True(t, ok)
	assert.Equal(t, "OK: reply", line)
}
