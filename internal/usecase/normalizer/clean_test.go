package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanDescription(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "pos debit with store number and location",
			in:   "POS DEBIT TIM HORTONS #1234 TORONTO ON",
			want: "Tim Hortons",
		},
		{
			name: "long reference number",
			in:   "EFT PAYROLL 000482917364 ACME CORP",
			want: "Payroll Acme Corp",
		},
		{
			name: "embedded slash date",
			in:   "CHQ 03/15 RENT",
			want: "Rent",
		},
		{
			name: "embedded iso date",
			in:   "PREAUTH 2024-03-01 GYM MEMBERSHIP",
			want: "Gym Membership",
		},
		{
			name: "trailing region without city is kept short",
			in:   "TIM HORTONS ON",
			want: "Tim Hortons",
		},
		{
			name: "mixed case left alone",
			in:   "Spotify Subscription",
			want: "Spotify Subscription",
		},
		{
			name: "short all caps left alone",
			in:   "LCB",
			want: "LCB",
		},
		{
			name: "interac transfer keeps reference token",
			in:   "INTERAC E-TRANSFER W03-J SENT",
			want: "W03-j Sent",
		},
		{
			name: "emptied string falls back to original",
			in:   "POS 123456",
			want: "POS 123456",
		},
		{
			name: "whitespace collapsed",
			in:   "  NO   FRILLS   ",
			want: "No Frills",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CleanDescription(tc.in))
		})
	}
}
