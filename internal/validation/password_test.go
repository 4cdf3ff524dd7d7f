package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	t.Run("accepts conforming passwords", func(t *testing.T) {
		for _, password := range []string{
			"Linkup4Ever!?",
			"Abcdefghij1!",                   // 12 runes, the minimum
			"A1!" + strings.Repeat("x", 125), // 128 runes, the maximum
			"päss Wörd 42!",
		} {
			assert.NoError(t, ValidatePassword(password), password)
		}
	})

	t.Run("rejects out-of-range lengths", func(t *testing.T) {
		require.Error(t, ValidatePassword("Ab1!"))
		require.Error(t, ValidatePassword("A1!"+strings.Repeat("x", 126)))
	})

	t.Run("rejects missing character classes", func(t *testing.T) {
		cases := map[string]string{
			"no upper":   "lowercase1234!",
			"no lower":   "UPPERCASE1234!",
			"no digit":   "NoDigitsHere!!",
			"no special": "NoSpecials12345",
		}
		for label, password := range cases {
			assert.Error(t, ValidatePassword(password), label)
		}
	})

	t.Run("length counts runes not bytes", func(t *testing.T) {
		// 11 runes, well over 12 bytes
		assert.Error(t, ValidatePassword("Ä1!äöüßéèêë"))
	})
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()

	t.Run("accepts typical usernames", func(t *testing.T) {
		for _, username := range []string{"alice", "alice-smith", "bob_42", "x1" + strings.Repeat("y", 28)} {
			assert.NoError(t, ValidateUsername(username), username)
		}
	})

	t.Run("rejects bad lengths and shapes", func(t *testing.T) {
		cases := map[string]string{
			"too short":           "ab",
			"too long":            strings.Repeat("z", 31),
			"illegal character":   "alice@home",
			"leading hyphen":      "-alice",
			"trailing underscore": "alice_",
			"non-ascii letters":   "ülrich",
		}
		for label, username := range cases {
			assert.Error(t, ValidateUsername(username), label)
		}
	})
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	// 254 characters total: 64 local + @ + 185-char label + ".com"
	longest := strings.Repeat("a", 64) + "@" + strings.Repeat("b", 185) + ".com"
	assert.NoError(t, ValidateEmail("alice@example.com"))
	assert.NoError(t, ValidateEmail(longest))
	assert.Error(t, ValidateEmail(longest+"m"), "over the RFC cap")

	for _, email := range []string{
		"not-an-email",
		"alice@",
		"alice@@example.com",
		"al ice@example.com",
		"alice@example.com.",
	} {
		assert.Error(t, ValidateEmail(email), email)
	}
}
