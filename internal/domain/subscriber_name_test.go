package domain

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSubscriberName_256GraphemesIsValid(t *testing.T) {
	_, err := ParseSubscriberName(strings.Repeat("e", 256))
	assert.NoError(t, err)
}

func TestParseSubscriberName_257GraphemesIsRejected(t *testing.T) {
	_, err := ParseSubscriberName(strings.Repeat("r", 257))
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestParseSubscriberName_CountsGraphemesNotBytes(t *testing.T) {
	// "e" + combining acute accent is one grapheme, two runes, three bytes.
	decomposed := "e\u0301"

	_, err := ParseSubscriberName(strings.Repeat(decomposed, 256))
	assert.NoError(t, err)

	_, err = ParseSubscriberName(strings.Repeat(decomposed, 257))
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestParseSubscriberName_WhitespaceOnlyIsRejected(t *testing.T) {
	for _, raw := range []string{" ", "   ", "\t", "\n \t"} {
		_, err := ParseSubscriberName(raw)
		assert.ErrorIs(t, err, ErrInvalidName, "%q", raw)
	}
}

func TestParseSubscriberName_EmptyIsRejected(t *testing.T) {
	_, err := ParseSubscriberName("")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestParseSubscriberName_ForbiddenCharactersAreRejected(t *testing.T) {
	for _, c := range []string{"/", "(", ")", `"`, "<", ">", `\`, "{", "}"} {
		_, err := ParseSubscriberName(c)
		assert.ErrorIs(t, err, ErrInvalidName, "%q alone", c)

		_, err = ParseSubscriberName("Ursula " + c + " Le Guin")
		assert.ErrorIs(t, err, ErrInvalidName, "%q embedded", c)
	}
}

func TestParseSubscriberName_InvalidUTF8IsRejected(t *testing.T) {
	for _, raw := range []string{"Ursula \xff\xfe Le Guin", "\xff\xfe", "Le Guin\xc3"} {
		_, err := ParseSubscriberName(raw)
		assert.ErrorIs(t, err, ErrInvalidName, "%q", raw)
	}
}

func TestParseSubscriberName_ValidNameIsKeptVerbatim(t *testing.T) {
	name, err := ParseSubscriberName("Kiran DeSimone")
	require.NoError(t, err)
	assert.Equal(t, "Kiran DeSimone", name.String())
	assert.False(t, name.IsZero())
}

func TestParseSubscriberName_SurroundingWhitespaceIsNotTrimmed(t *testing.T) {
	name, err := ParseSubscriberName("  le guin ")
	require.NoError(t, err)
	assert.Equal(t, "  le guin ", name.String())
}

func TestParseSubscriberName_RoundTripsRandomValidNames(t *testing.T) {
	alphabet := []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 .-_'éñüßøæ漢字한글")
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		n := 1 + rng.Intn(MaxNameGraphemes)
		runes := make([]rune, n)
		for j := range runes {
			runes[j] = alphabet[rng.Intn(len(alphabet))]
		}
		raw := string(runes)
		if strings.TrimSpace(raw) == "" {
			continue
		}

		name, err := ParseSubscriberName(raw)
		require.NoError(t, err, "%q", raw)
		assert.Equal(t, raw, name.String())
	}
}
