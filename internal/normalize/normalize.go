// Package normalize holds the pure canonicalization helpers shared by the
// resolver and the reconciler. Every function is side-effect free and total
// over well-formed optional inputs.
package normalize

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"billscan/internal/domain"
)

// minorUnitScale converts integer minor units (cents) to major units.
var minorUnitScale = decimal.NewFromInt(100)

// VAT canonicalizes a VAT number: all whitespace stripped, uppercased.
func VAT(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), ""))
}

// IBAN canonicalizes a bank account number the same way the record store
// sanitizes stored ones: whitespace stripped, uppercased.
func IBAN(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), ""))
}

// RegistrableDomain reduces a website value to its registrable domain: the
// last two dot-separated labels of the host. Values without a scheme or
// authority are treated as a bare host. Single-label hosts yield no domain.
func RegistrableDomain(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	host := u.Host
	if u.Scheme == "" && host == "" {
		host = u.Path
	}
	if host == "" {
		return "", false
	}
	if i := strings.LastIndex(host, ":"); i >= 0 && !strings.Contains(host[i:], "]") {
		host = host[:i]
	}
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return "", false
	}
	return strings.ToLower(strings.Join(labels[len(labels)-2:], ".")), true
}

// EmailDomain returns the part after the first "@", or false when the value
// is not an email address.
func EmailDomain(email string) (string, bool) {
	_, dom, found := strings.Cut(email, "@")
	if !found || dom == "" {
		return "", false
	}
	return strings.ToLower(dom), true
}

// MinorToDecimal converts integer minor units to a decimal amount.
// A nil input stays nil.
func MinorToDecimal(minor *int64) *decimal.Decimal {
	if minor == nil {
		return nil
	}
	d := decimal.NewFromInt(*minor).Div(minorUnitScale)
	return &d
}

// ParseDate parses an optional extracted date string with a known layout.
// A nil input yields nil; a present but unparsable value is a hard error:
// the provider promises the layout per field, so a mismatch means the
// document is structurally broken, not merely incomplete.
func ParseDate(s *string, layout string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(layout, *s)
	if err != nil {
		return nil, fmt.Errorf("%w: date %q does not match layout %s", domain.ErrMalformedInput, *s, layout)
	}
	return &t, nil
}
