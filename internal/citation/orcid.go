package citation

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	orcidHTTPSPrefixConstant         = "https://orcid.org/"
	orcidHTTPPrefixConstant          = "http://orcid.org/"
	invalidORCIDFormatTemplate       = "ORCID %q is not of the form 0000-0000-0000-000X"
	invalidORCIDChecksumTemplate     = "ORCID %q has an invalid check digit"
	orcidCheckDigitModulus           = 11
	orcidCheckDigitTenRepresentation = 'X'
)

var orcidPattern = regexp.MustCompile(`^\d{4}-\d{4}-\d{4}-\d{3}[\dX]$`)

// NormalizeORCID strips the orcid.org URL prefix and returns the bare
// identifier.
func NormalizeORCID(value string) string {
	trimmed := strings.TrimSpace(value)
	trimmed = strings.TrimPrefix(trimmed, orcidHTTPSPrefixConstant)
	return strings.TrimPrefix(trimmed, orcidHTTPPrefixConstant)
}

// ValidateORCID checks the identifier shape and its ISO 7064 MOD 11-2 check
// digit. Both the bare form and the https://orcid.org/ URL form are accepted.
func ValidateORCID(value string) error {
	identifier := NormalizeORCID(value)
	if !orcidPattern.MatchString(identifier) {
		return fmt.Errorf(invalidORCIDFormatTemplate, value)
	}

	digits := strings.ReplaceAll(identifier, "-", "")
	if orcidCheckDigit(digits[:len(digits)-1]) != digits[len(digits)-1] {
		return fmt.Errorf(invalidORCIDChecksumTemplate, value)
	}
	return nil
}

func orcidCheckDigit(baseDigits string) byte {
	total := 0
	for _, digit := range baseDigits {
		total = (total + int(digit-'0')) * 2
	}
	remainder := total % orcidCheckDigitModulus
	result := (12 - remainder) % orcidCheckDigitModulus
	if result == 10 {
		return orcidCheckDigitTenRepresentation
	}
	return byte('0' + result)
}
