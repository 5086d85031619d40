package app

import "strings"

const (
	cardDigits   = 16
	expiryDigits = 4
	cvvDigits    = 4
)

func digitsOnly(s string, max int) string {
	var b strings.Builder
	for _, r := range s {
		if r < '0' || r > '9' {
			continue
		}
		if b.Len() == max {
			break
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormatCardNumber keeps at most 16 digits and groups them by four:
// "4242424242424242" -> "4242 4242 4242 4242".
func FormatCardNumber(in string) string {
	d := digitsOnly(in, cardDigits)
	parts := make([]string, 0, 4)
	for i := 0; i < len(d); i += 4 {
		end := min(i+4, len(d))
		parts = append(parts, d[i:end])
	}
	return strings.Join(parts, " ")
}

// FormatExpiry masks input as MM/YY; "1225" -> "12/25", "1" -> "1".
func FormatExpiry(in string) string {
	d := digitsOnly(in, expiryDigits)
	if len(d) >= 2 {
		return d[:2] + "/" + d[2:]
	}
	return d
}

func FormatCVV(in string) string { return digitsOnly(in, cvvDigits) }
