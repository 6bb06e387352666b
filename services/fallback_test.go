package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeededFallbackIsDeterministic(t *testing.T) {
	a := NewSeededFallback(7)
	b := NewSeededFallback(7)

	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Choose(), b.Choose())
	}
}

func TestChooseReturnsKnownPhrase(t *testing.T) {
	policy := NewRandomFallback()
	for i := 0; i < 20; i++ {
		assert.Contains(t, FallbackPhrases, policy.Choose())
	}
}

func TestIsFallbackAnswer(t *testing.T) {
	require.NotEmpty(t, FallbackPhrases)

	for _, phrase := range FallbackPhrases {
		assert.True(t, IsFallbackAnswer(phrase))
		assert.True(t, IsFallbackAnswer("Apologies. "+phrase))
	}

	assert.False(t, IsFallbackAnswer("Refunds are issued within 30 days."))
	assert.False(t, IsFallbackAnswer(""))
}
