package mapper

import (
	"strings"

	"acordex/internal/domain"
)

// TransformFunc converts a raw field value into its output form.
type TransformFunc func(string) string

var transforms = map[domain.Transform]TransformFunc{
	domain.TransformIdentity:        strings.TrimSpace,
	domain.TransformDatePassthrough: strings.TrimSpace,
	domain.TransformCurrency:        Currency,
	domain.TransformBooleanYesNo:    BooleanYesNo,
}

// Apply runs the named transform. Unknown transforms behave as identity.
func Apply(t domain.Transform, value string) string {
	fn, ok := transforms[t]
	if !ok {
		return strings.TrimSpace(value)
	}
	return fn(value)
}

// Currency keeps the digits and the decimal point of value and drops
// everything else, so "$1,000,000" becomes "1000000". A trailing decimal
// point is dropped. Values that are not a single non-negative amount (a second
// decimal point, or a minus sign before the first digit) yield "" and stay
// unmapped. The result is canonical: Currency(Currency(v)) == Currency(v).
func Currency(value string) string {
	var b strings.Builder
	seenDot := false
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.':
			if seenDot {
				return ""
			}
			seenDot = true
			b.WriteRune(r)
		case r == '-' && b.Len() == 0:
			return ""
		}
	}
	out := strings.TrimSuffix(b.String(), ".")
	if out == "" || out == "." {
		return ""
	}
	if strings.HasPrefix(out, ".") {
		out = "0" + out
	}
	return out
}

var (
	truthy = map[string]struct{}{
		"yes": {}, "y": {}, "true": {}, "x": {},
		"1": {}, "on": {}, "checked": {}, "/yes": {}, "/1": {}, "/on": {},
	}
	falsy = map[string]struct{}{
		"no": {}, "n": {}, "false": {}, "": {},
		"0": {}, "off": {}, "/off": {}, "unchecked": {}, "/0": {}, "/no": {},
	}
)

// BooleanYesNo maps checkbox states to "Yes" or "No". Values outside the
// known token sets pass through trimmed.
func BooleanYesNo(value string) string {
	v := strings.TrimSpace(value)
	lower := strings.ToLower(v)
	if _, ok := truthy[lower]; ok {
		return "Yes"
	}
	if _, ok := falsy[lower]; ok {
		return "No"
	}
	return v
}
