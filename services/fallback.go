package services

import (
	"math/rand"
	"strings"
	"time"
)

// FallbackPhrases is the fixed set of answers returned when the retrieved
// context does not contain the information asked for. The language model is
// instructed to reply with one of these verbatim, and the pipeline checks
// the response text against them.
var FallbackPhrases = []string{
	"I don't know based on the given context.",
	"The provided documents do not contain that information.",
	"I cannot answer this from the indexed documents.",
}

// FallbackPolicy selects which fallback phrase to use when the model returns
// nothing usable.
type FallbackPolicy interface {
	Choose() string
}

type randomFallback struct {
	rng *rand.Rand
}

// NewRandomFallback picks uniformly at random from FallbackPhrases.
func NewRandomFallback() FallbackPolicy {
	return &randomFallback{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeededFallback is the deterministic variant used in tests.
func NewSeededFallback(seed int64) FallbackPolicy {
	return &randomFallback{rng: rand.New(rand.NewSource(seed))}
}

func (f *randomFallback) Choose() string {
	return FallbackPhrases[f.rng.Intn(len(FallbackPhrases))]
}

// IsFallbackAnswer reports whether the answer text contains one of the fixed
// fallback phrases. Containment, not equality: models tend to decorate the
// phrase with extra words.
func IsFallbackAnswer(answer string) bool {
	for _, phrase := range FallbackPhrases {
		if strings.Contains(answer, phrase) {
			return true
		}
	}
	return false
}
