package render

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		in   string
		sym  string
		want string
	}{
		{"1000000", "", "1,000,000"},
		{"3000000", "£", "£3,000,000"},
		{"40000000", "$", "$40,000,000"},
		{"999.6", "£", "£1,000"},
		{"12", "£", "£12"},
		{"0", "£", "£0"},
		{"-1250", "£", "-£1,250"},
		{"9223372036854775807", "£", "£9,223,372,036,854,775,807"},
		{"12345678901234567890123", "£", "£12,345,678,901,234,567,890,123"},
		{"-98765432109876543210.4", "$", "-$98,765,432,109,876,543,210"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatAmount(decimal.RequireFromString(tc.in), tc.sym), tc.in)
	}
}

func TestFormatSI(t *testing.T) {
	cases := map[float64]string{
		0:          "0",
		5_000_000:  "5.0M",
		10_000_000: "10M",
		40_000_000: "40M",
		250_000:    "250k",
		2_500:      "2.5k",
		999_600:    "1.0M",
		-5_000_000: "-5.0M",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatSI(in), "FormatSI(%v)", in)
	}
}
