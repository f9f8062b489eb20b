package core

import "testing"

func TestStatusFor(t *testing.T) {
	cases := []struct {
		qty, threshold int
		want           StockStatus
	}{
		{0, 5, StatusOutOfStock},
		{0, 0, StatusOutOfStock},
		{1, 5, StatusLowStock},
		{5, 5, StatusLowStock},
		{6, 5, StatusInStock},
		{3, 0, StatusInStock}, // threshold 0 disables the low band
	}
	for _, tc := range cases {
		if got := statusFor(tc.qty, tc.threshold); got != tc.want {
			t.Errorf("statusFor(%d, %d) = %s, want %s", tc.qty, tc.threshold, got, tc.want)
		}
	}
}
