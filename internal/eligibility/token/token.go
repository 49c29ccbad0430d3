// Package token expands [[ ... ]] placeholders embedded in campaign
// strings — cohort descriptions, status text, action text and URL
// labels — against a Person View, with an optional :DATE(fmt) postfix
// conversion.
package token

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/person"
)

// InvalidToken reports a malformed token: an unrecognized scope, a
// missing segment, or an unsupported :DATE(...) format directive.
type InvalidToken struct {
	Token  string
	Reason string
}

func (e *InvalidToken) Error() string {
	return fmt.Sprintf("invalid token %q: %s", e.Token, e.Reason)
}

const wireDateLayout = "20060102"

// Expand scans s for [[ ... ]] tokens and replaces each with the
// corresponding Person View value, applying any :DATE(fmt) postfix. It
// returns the expanded string, or an *InvalidToken error if any token in
// s is malformed. A string with no tokens is returned unchanged.
func Expand(s string, view *person.View) (string, error) {
	var b strings.Builder
	rest := s
	for {
		start := strings.Index(rest, "[[")
		if start == -1 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:start])
		end := strings.Index(rest[start:], "]]")
		if end == -1 {
			return "", &InvalidToken{Token: rest[start:], Reason: "unterminated token"}
		}
		raw := rest[start+2 : start+end]
		expanded, err := expandOne(raw, view)
		if err != nil {
			return "", err
		}
		b.WriteString(expanded)
		rest = rest[start+end+2:]
	}
	return b.String(), nil
}

func expandOne(raw string, view *person.View) (string, error) {
	body, format, hasFormat, err := splitDateSuffix(raw)
	if err != nil {
		return "", err
	}

	parts := strings.Split(body, ".")
	var value string
	var present bool

	switch {
	case len(parts) == 2 && parts[0] == "PERSON":
		value, present = view.PersonAttr(parts[1])
	case len(parts) == 3 && parts[0] == "TARGET":
		value, present = view.TargetAttr(parts[1], parts[2])
	default:
		return "", &InvalidToken{Token: "[[" + raw + "]]", Reason: "unrecognized token scope"}
	}

	if !present {
		return "", nil
	}
	if !hasFormat {
		return value, nil
	}
	return formatDate(value, format)
}

// splitDateSuffix separates the optional trailing ":DATE(<format>)" from
// a token body.
func splitDateSuffix(raw string) (body, format string, hasFormat bool, err error) {
	idx := strings.Index(raw, ":")
	if idx == -1 {
		return raw, "", false, nil
	}
	suffix := raw[idx+1:]
	const prefix = "DATE("
	if !strings.HasPrefix(suffix, prefix) || !strings.HasSuffix(suffix, ")") {
		return "", "", false, &InvalidToken{Token: "[[" + raw + "]]", Reason: "unsupported token postfix"}
	}
	format = strings.TrimSuffix(strings.TrimPrefix(suffix, prefix), ")")
	return raw[:idx], format, true, nil
}

// formatDate reformats a YYYYMMDD value using the platform-independent
// calendar format subset (%Y %m %d %B %b %e %d).
func formatDate(value, format string) (string, error) {
	d, err := time.ParseInLocation(wireDateLayout, value, time.UTC)
	if err != nil {
		return "", &InvalidToken{Token: value, Reason: "attribute value is not a YYYYMMDD date"}
	}

	var b strings.Builder
	for i := 0; i < len(format); i++ {
		if format[i] != '%' || i == len(format)-1 {
			b.WriteByte(format[i])
			continue
		}
		i++
		switch format[i] {
		case 'Y':
			b.WriteString(strconv.Itoa(d.Year()))
		case 'm':
			b.WriteString(fmt.Sprintf("%02d", int(d.Month())))
		case 'd':
			b.WriteString(fmt.Sprintf("%02d", d.Day()))
		case 'e':
			b.WriteString(fmt.Sprintf("%2d", d.Day()))
		case 'B':
			b.WriteString(d.Month().String())
		case 'b':
			b.WriteString(d.Month().String()[:3])
		default:
			return "", &InvalidToken{Token: format, Reason: fmt.Sprintf("unsupported date format directive %%%c", format[i])}
		}
	}
	return b.String(), nil
}
