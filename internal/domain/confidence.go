package domain

// Confidence grades how strongly the evidence supports a connection.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Rank orders confidence tiers for merge decisions. Higher is stronger.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	}
	return 0
}

// heuristicBands maps an SNR reading to a confidence tier for connections
// inferred without routing evidence. Bands are scanned strongest-first; the
// first band whose floor the reading clears applies, and anything below every
// floor is low. -10 dB itself belongs to the medium band.
var heuristicBands = []struct {
	Floor          float64
	FloorInclusive bool
	Confidence     Confidence
}{
	{Floor: 0, FloorInclusive: false, Confidence: ConfidenceHigh},
	{Floor: -10, FloorInclusive: true, Confidence: ConfidenceMedium},
}

// ConfidenceForSNR grades an SNR-only inference. A nil reading is graded low:
// with no signal estimate at all the edge is a best guess.
func ConfidenceForSNR(snr *float64) Confidence {
	if snr == nil {
		return ConfidenceLow
	}
	for _, band := range heuristicBands {
		if *snr > band.Floor || (band.FloorInclusive && *snr == band.Floor) {
			return band.Confidence
		}
	}
	return ConfidenceLow
}
