package util

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
	"github.com/pkg/errors"
)

// ErrInvalidPhone is returned when a phone number cannot be parsed or is not dialable.
var ErrInvalidPhone = errors.New("invalid phone number")

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePhone formats raw as E.164. Numbers without a country prefix are
// read in defaultRegion. An empty input stays empty.
func NormalizePhone(raw, defaultRegion string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}

	num, err := phonenumbers.Parse(raw, strings.ToUpper(defaultRegion))
	if err != nil {
		return "", errors.Wrap(ErrInvalidPhone, err.Error())
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalidPhone
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}
