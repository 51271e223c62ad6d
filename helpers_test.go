package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLimited(t *testing.T) {
	data, err := readLimited(strings.NewReader("resume"), 6)
	require.NoError(t, err)
	assert.Equal(t, "resume", string(data))

	_, err = readLimited(strings.NewReader("resume!"), 6)
	require.ErrorIs(t, err, errResumeTooLarge)
}
