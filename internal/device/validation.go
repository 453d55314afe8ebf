package device

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/nerrad567/florabridge/internal/translit"
)

// addressPattern matches Mi Flora hardware addresses (vendor prefix C4:7C:8D).
const addressPattern = `^C4:7C:8D:[0-9A-F]{2}:[0-9A-F]{2}:[0-9A-F]{2}$`

var addressRegex = regexp.MustCompile(addressPattern)

// umlauts are spelled out before generic transliteration, which would only
// drop the diaeresis.
var umlauts = strings.NewReplacer(
	" ", "-",
	"ä", "ae", "Ä", "Ae",
	"ö", "oe", "Ö", "Oe",
	"ü", "ue", "Ü", "Ue",
	"ß", "ss",
)

// ValidateAddress checks a hardware address against the vendor pattern.
// Matching is case-sensitive: hex digits must be upper case.
func ValidateAddress(address string) error {
	if !addressRegex.MatchString(address) {
		return fmt.Errorf("%w: %q does not match %s", ErrInvalidAddress, address, addressPattern)
	}
	return nil
}

// CleanIdentifier turns a display string into an ASCII identifier without
// spaces. It is idempotent.
func CleanIdentifier(s string) string {
	clean := strings.TrimSpace(s)
	clean = umlauts.Replace(clean)
	clean = translit.ASCII(clean)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '-'
		}
		return r
	}, clean)
}

// SplitName splits a "name[@location]" key on its first '@'.
func SplitName(key string) (name, location string) {
	name, location, _ = strings.Cut(key, "@")
	return name, location
}
