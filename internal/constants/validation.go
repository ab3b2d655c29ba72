// Package constants provides shared constants for the storefront application
package constants

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/belphemur/storefront/internal/hours"
)

const (
	// WhatsAppMinDigits is the shortest accepted WhatsApp number, country code included
	WhatsAppMinDigits = 11
	// WhatsAppMaxDigits is the longest number allowed by E.164
	WhatsAppMaxDigits = 15
	// AliasMaxLength bounds the public storefront path segment
	AliasMaxLength = 64
)

var aliasPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// IsValidDayOfWeek checks if a given day string is a valid day of the week
// Names are case-sensitive English names as stored in schedules
func IsValidDayOfWeek(day string) bool {
	_, ok := hours.ParseWeekday(day)
	return ok
}

// IsValidWhatsApp checks that a number carries a country code and fits E.164
// Formatting characters such as spaces, dashes and a leading + are ignored
func IsValidWhatsApp(number string) bool {
	digits := DigitsOnly(number)
	return len(digits) >= WhatsAppMinDigits && len(digits) <= WhatsAppMaxDigits
}

// IsValidAlias checks that an alias is a lowercase slug usable in a URL
func IsValidAlias(alias string) bool {
	return len(alias) <= AliasMaxLength && aliasPattern.MatchString(alias)
}

// DigitsOnly strips every non-digit character
func DigitsOnly(value string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			return r
		}
		return -1
	}, value)
}

// Slugify lowercases a display name into an alias, collapsing every run of
// other characters into a single dash
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	slug := b.String()
	if len(slug) > AliasMaxLength {
		slug = strings.TrimRight(slug[:AliasMaxLength], "-")
	}
	return slug
}
