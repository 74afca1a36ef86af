package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDigest(t *testing.T) {
	assert.Equal(t, "", Digest(""))
	assert.Len(t, Digest("Intro"), 12)
	assert.Equal(t, Digest("Intro"), Digest("Intro"))
	assert.NotEqual(t, Digest("Intro"), Digest("intro"))
}
