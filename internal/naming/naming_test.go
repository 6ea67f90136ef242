package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		// Empty and trivial inputs
		{name: "empty string", input: "", want: ""},
		{name: "single letter", input: "a", want: "a"},
		{name: "only disallowed runes", input: "(((", want: ""},

		// Lowercasing
		{name: "uppercase letters", input: "Billing", want: "billing"},
		{name: "mixed case", input: "UserService", want: "userservice"},

		// Allowed punctuation
		{name: "hyphen kept", input: "billing-service", want: "billing-service"},
		{name: "underscore kept", input: "billing_service", want: "billing_service"},
		{name: "digits kept", input: "api2", want: "api2"},

		// Collapsing runs
		{name: "space becomes underscore", input: "billing service", want: "billing_service"},
		{name: "run of disallowed collapses", input: "billing -- service", want: "billing_--_service"},
		{name: "repeated underscores collapse", input: "a__b", want: "a_b"},
		{name: "space and parens collapse", input: "Billing Service (v2)", want: "billing_service_v2"},

		// Trimming
		{name: "leading disallowed trimmed", input: " billing", want: "billing"},
		{name: "trailing disallowed trimmed", input: "billing!", want: "billing"},
		{name: "unicode collapses", input: "сервис billing", want: "billing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeName(tt.input))
		})
	}
}

func TestSafeNameIdempotent(t *testing.T) {
	inputs := []string{"Billing Service (v2)", "users", "a__b", "API Gateway!"}
	for _, in := range inputs {
		once := SafeName(in)
		assert.Equal(t, once, SafeName(once), "SafeName should be idempotent for %q", in)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty string", input: "", want: ""},
		{name: "single word", input: "billing", want: "Billing"},
		{name: "kebab", input: "billing-service", want: "Billing Service"},
		{name: "snake", input: "billing_service", want: "Billing Service"},
		{name: "dots", input: "com.example.api", want: "Com Example Api"},
		{name: "repeated separators", input: "a--b", want: "A B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayName(tt.input))
		})
	}
}
