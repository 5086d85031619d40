package app_test

import (
	"testing"

	"luxestay/internal/app"
)

func TestFormatCardNumber(t *testing.T) {
	cases := map[string]string{
		"":                        "",
		"4242":                    "4242",
		"42424":                   "4242 4",
		"4242424242424242":        "4242 4242 4242 4242",
		"4242-4242-4242-4242":     "4242 4242 4242 4242",
		"4242 4242 4242 4242 999": "4242 4242 4242 4242",
		"abcd":                    "",
	}
	for in, want := range cases {
		if got := app.FormatCardNumber(in); got != want {
			t.Errorf("FormatCardNumber(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatExpiry(t *testing.T) {
	cases := map[string]string{
		"1":      "1",
		"12":     "12/",
		"1225":   "12/25",
		"12/25":  "12/25",
		"122599": "12/25",
	}
	for in, want := range cases {
		if got := app.FormatExpiry(in); got != want {
			t.Errorf("FormatExpiry(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatCVV(t *testing.T) {
	if got := app.FormatCVV("12a345"); got != "1234" {
		t.Fatalf("got %q", got)
	}
}
