package domain

import "testing"

func TestConfidenceForSNR(t *testing.T) {
	cases := []struct {
		name string
		snr  float64
		want Confidence
	}{
		{"strong signal is high", 7.5, ConfidenceHigh},
		{"just above zero is high", 0.1, ConfidenceHigh},
		{"zero is medium", 0, ConfidenceMedium},
		{"mid band is medium", -5, ConfidenceMedium},
		{"band floor is medium", -10, ConfidenceMedium},
		{"below floor is low", -10.5, ConfidenceLow},
		{"very weak is low", -20, ConfidenceLow},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snr := tc.snr
			if got := ConfidenceForSNR(&snr); got != tc.want {
				t.Errorf("ConfidenceForSNR(%v) = %s, want %s", tc.snr, got, tc.want)
			}
		})
	}

	t.Run("missing reading is low", func(t *testing.T) {
		if got := ConfidenceForSNR(nil); got != ConfidenceLow {
			t.Errorf("ConfidenceForSNR(nil) = %s, want low", got)
		}
	})
}

func TestConfidenceRank(t *testing.T) {
	if ConfidenceHigh.Rank() <= ConfidenceMedium.Rank() {
		t.Error("expected high to outrank medium")
	}
	if ConfidenceMedium.Rank() <= ConfidenceLow.Rank() {
		t.Error("expected medium to outrank low")
	}
	if Confidence("bogus").Rank() != 0 {
		t.Error("expected unknown confidence to rank lowest")
	}
}
