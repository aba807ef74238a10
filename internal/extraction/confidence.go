package extraction

const maxConfidence = 100

// Weights are the points each recovered field or piece of GS1 structure adds
// to the confidence score
type Weights struct {
	Manufacturer int
	Model        int
	Serial       int
	Lot          int
	Expiration   int
	SerialTag    int
	LotTag       int
}

// DefaultWeights returns the standard scoring table. The serial number
// dominates because everything downstream keys on it.
func DefaultWeights() Weights {
	return Weights{
		Manufacturer: 25,
		Model:        15,
		Serial:       40,
		Lot:          10,
		Expiration:   5,
		SerialTag:    10,
		LotTag:       5,
	}
}

// Evidence records which GS1 structures were present in the label text
type Evidence struct {
	SerialTag bool
	LotTag    bool
}

// Score sums the weights of the recovered fields and structural evidence,
// clamped to [0, 100]
func Score(r Result, ev Evidence, w Weights) int {
	score := 0
	add := func(present bool, points int) {
		if present && points > 0 {
			score += points
		}
	}
	add(r.Manufacturer != "" && r.Manufacturer != Unknown, w.Manufacturer)
	add(r.ModelName != "", w.Model)
	add(r.SerialNumber != "", w.Serial)
	add(r.LotNumber != "", w.Lot)
	add(r.ExpirationDate != "", w.Expiration)
	add(ev.SerialTag, w.SerialTag)
	add(ev.LotTag, w.LotTag)
	return min(score, maxConfidence)
}
