package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesLines(t *testing.T) {
	l, err := CreateLogger()
	require.NoError(t, err)
	defer l.Close()

	var mirror bytes.Buffer
	l.Mirror(&mirror)

	l.Infof("page %d attempted", 3)
	l.Errorf("failed: %s", "boom")

	content, err := os.ReadFile(l.Path())
	require.NoError(t, err)

	assert.Contains(t, string(content), "[INFO]")
	assert.Contains(t, string(content), "page 3 attempted")
	assert.Contains(t, string(content), "[ERROR]")
	assert.Equal(t, string(content), mirror.String())
}

func TestLoggerCleanAndClose(t *testing.T) {
	l, err := CreateLogger()
	require.NoError(t, err)

	l.Infof("something")
	l.CleanFile()

	content, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	assert.Empty(t, content)

	path := l.Path()
	require.NoError(t, l.Close())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
