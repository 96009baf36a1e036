package compiler

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingReader struct {
	r    io.Reader
	read int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.read += n
	return n, err
}

func TestReadDiagnostics(t *testing.T) {
	data, err := readDiagnostics(strings.NewReader("short output"))
	require.NoError(t, err)
	assert.Equal(t, "short output", string(data))

	// past the cap the remainder must still be consumed, otherwise the
	// compiler blocks on a full pipe until the wall limit
	big := strings.Repeat("e", maxDiagnosticBytes+4096)
	src := &countingReader{r: strings.NewReader(big)}
	data, err = readDiagnostics(src)
	require.NoError(t, err)
	assert.Len(t, data, maxDiagnosticBytes)
	assert.Equal(t, len(big), src.read)
}
