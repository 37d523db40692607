package money

import "testing"

func TestRoundTwoPlaceUsingThirdDigit(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"0.025", "0.03"},
		{"0.015", "0.02"},
		{"-0.015", "-0.02"},
		{"-0.025", "-0.03"},
		{"0.0249", "0.02"},
		{"0.0251", "0.03"},
		{"-0.0249", "-0.02"},
		{"17.0965", "17.10"},
		{"8.544", "8.54"},
		{"14.4837", "14.48"},
		{"0.004", "0.00"},
		{"0.005", "0.01"},
		{"12", "12.00"},
		{"0", "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			result := Format(RoundTwoPlaceUsingThirdDigit(MustParse(tt.in)))
			if result != tt.expected {
				t.Errorf("RoundTwoPlaceUsingThirdDigit(%s) = %s, expected %s", tt.in, result, tt.expected)
			}
		})
	}
}

func TestTruncateTwoPlace(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"134.6153", "134.61"},
		{"0.019", "0.01"},
		{"-0.019", "-0.01"},
		{"19.2", "19.20"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			result := Format(TruncateTwoPlace(MustParse(tt.in)))
			if result != tt.expected {
				t.Errorf("TruncateTwoPlace(%s) = %s, expected %s", tt.in, result, tt.expected)
			}
		})
	}
}

func TestMinMaxSum(t *testing.T) {
	a, b := MustParse("1.50"), MustParse("2.25")
	if !Min(a, b).Equal(a) {
		t.Errorf("Min() = %s, expected %s", Min(a, b), a)
	}
	if !Max(a, b).Equal(b) {
		t.Errorf("Max() = %s, expected %s", Max(a, b), b)
	}
	if got := Format(Sum(a, b, MustParse("-0.75"))); got != "3.00" {
		t.Errorf("Sum() = %s, expected 3.00", got)
	}
	if !Sum().IsZero() {
		t.Errorf("Sum() of nothing should be zero")
	}
}
