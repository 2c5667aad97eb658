package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegment(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name: "run-together trip block",
			input: "10 Oct 2025 My trip to Barcelona AMS-BCN KL1673 625 Miles 10 XP Flown on 08 Oct 2025 " +
				"BCN-AMS KL1674 625 Miles 10 XP 12 Oct 2025 Hotel stay Marriott 500 Miles",
			want: []string{
				"10 Oct 2025 My trip to Barcelona",
				"AMS-BCN KL1673 625 Miles 10 XP",
				"Flown on 08 Oct 2025",
				"BCN-AMS KL1674 625 Miles 10 XP",
				"12 Oct 2025 Hotel stay Marriott 500 Miles",
			},
		},
		{
			name:  "consecutive transactions on one line",
			input: "01/09/2025 Subscription 2 000 Miles 03/09/2025 Amazon 250 Miles",
			want:  []string{"01/09/2025 Subscription 2 000 Miles", "03/09/2025 Amazon 250 Miles"},
		},
		{
			name:  "sustainable fuel sub-line",
			input: "AMS-NCE KL1263 900 Miles 15 XP Sustainable Aviation Fuel 150 Miles 5 XP",
			want:  []string{"AMS-NCE KL1263 900 Miles 15 XP", "Sustainable Aviation Fuel 150 Miles 5 XP"},
		},
		{
			name:  "whitespace and blank lines",
			input: "  Flying   Blue \n\n\t Status: Gold  \n",
			want:  []string{"Flying Blue", "Status: Gold"},
		},
		{
			name:  "route named inside a transaction",
			input: "08 Sep 2025 Reward ticket AMS-NCE -25 000 Miles 10 Sep 2025 Amazon 250 Miles",
			want:  []string{"08 Sep 2025 Reward ticket AMS-NCE -25 000 Miles", "10 Sep 2025 Amazon 250 Miles"},
		},
		{
			name:  "partner leg without flight number",
			input: "12 Jun 2025 My trip to Amsterdam JFK-AMS Delta Air Lines 3 500 Miles 48 XP",
			want:  []string{"12 Jun 2025 My trip to Amsterdam", "JFK-AMS Delta Air Lines 3 500 Miles 48 XP"},
		},
		{
			name:  "localised flight date marker",
			input: "CDG-LIS AF1124 700 Miles 8 XP Vol effectué le 3 févr. 2025",
			want:  []string{"CDG-LIS AF1124 700 Miles 8 XP", "Vol effectué le 3 févr. 2025"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Segment(tt.input))
		})
	}
}

func TestSegmentIdempotent(t *testing.T) {
	inputs := []string{
		"10 Oct 2025 My trip to Barcelona AMS-BCN KL1673 625 Miles 10 XP Flown on 08 Oct 2025 BCN-AMS KL1674 625 Miles 10 XP",
		"08 Oct 2025 XP counter -300 XP 08 Oct 2025 Platinum level reached 08 Oct 2025 Surplus XP 45 XP",
		"3 févr. 2025 Mon voyage à Lisbonne CDG-LIS AF1124 700 Miles 8 XP Vol effectué le 3 févr. 2025",
		"Statement\nBalance 12 500 Miles\n2025-01-02 Hertz 300 Miles 2025-01-05 Amex 1 200 Miles",
	}

	for _, input := range inputs {
		once := Segment(input)
		twice := Segment(strings.Join(once, "\n"))
		assert.Equal(t, once, twice, "input %q", input)
		for _, line := range once {
			assert.NotEmpty(t, line)
			assert.Equal(t, strings.Join(strings.Fields(line), " "), line)
		}
	}
}
