package harmony

import "math"

const (
	// TargetHz is the pitch the summed sequence frequency is pulled towards.
	TargetHz = 440.00
	// RepeatPenalty is added for each adjacent pair of identical labels.
	RepeatPenalty = 50.0
	// IntervalReward is subtracted for each adjacent pair whose index
	// distance is in RewardedIntervals.
	IntervalReward = 20.0
)

// RewardedIntervals are the vocabulary-index distances that earn a reward.
// They are named after the major second, major third and perfect fifth but
// are compared against table positions, not semitones.
var RewardedIntervals = [...]int{2, 4, 7}

// Breakdown holds the terms that make up an objective score.
type Breakdown struct {
	Total    float64 `json:"total_hz"`
	FreqDiff float64 `json:"freq_diff"`
	Repeats  int     `json:"repeats"`
	Rewards  int     `json:"rewards"`
	Penalty  float64 `json:"penalty"`
	Score    float64 `json:"score"`
}

// Evaluator scores sequences against a vocabulary. Lower is better.
type Evaluator struct {
	vocab *Vocabulary
}

// NewEvaluator returns an evaluator for vocab (DefaultVocabulary when nil).
func NewEvaluator(vocab *Vocabulary) *Evaluator {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &Evaluator{vocab: vocab}
}

// Vocabulary returns the table used for lookups.
func (e *Evaluator) Vocabulary() *Vocabulary { return e.vocab }

// Score returns the objective value of seq.
func (e *Evaluator) Score(seq Sequence) (float64, error) {
	b, err := e.Breakdown(seq)
	if err != nil {
		return 0, err
	}
	return b.Score, nil
}

// Breakdown computes the score of seq along with its individual terms.
func (e *Evaluator) Breakdown(seq Sequence) (Breakdown, error) {
	var b Breakdown
	if len(seq) == 0 {
		return b, invalid("sequence", "must contain at least one note")
	}

	idx := make([]int, len(seq))
	for i, label := range seq {
		j, err := e.vocab.IndexOf(label)
		if err != nil {
			return Breakdown{}, err
		}
		idx[i] = j
		b.Total += e.vocab.notes[j].Hz
	}
	b.FreqDiff = math.Abs(b.Total - TargetHz)

	for i := 1; i < len(seq); i++ {
		if seq[i] == seq[i-1] {
			b.Repeats++
			b.Penalty += RepeatPenalty
		}
	}
	for i := 1; i < len(seq); i++ {
		if isRewardedInterval(absInt(idx[i] - idx[i-1])) {
			b.Rewards++
			b.Penalty -= IntervalReward
		}
	}

	b.Score = b.FreqDiff + b.Penalty
	return b, nil
}

func isRewardedInterval(interval int) bool {
	for _, r := range RewardedIntervals {
		if interval == r {
			return true
		}
	}
	return false
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
