package engine

// Outcome is a closed union over the ways a submitted attempt or an
// expired deadline can land. Each variant carries only the fields
// relevant to that outcome.
type Outcome interface {
	isOutcome()
}

// Success reports a round resolved by a correct answer.
type Success struct {
	Word            string
	Score           int
	SpeedTier       string
	SpeedMultiplier float64
	ComboMultiplier float64
	Combo           int
	FirstTry        bool
}

// Failure reports a wrong spelling. Final is set when the crash will
// drain the last life.
type Failure struct {
	Word      string
	TypedText string
	Final     bool
}

// Timeout reports a deadline expiry; the word was never answered.
type Timeout struct {
	Word  string
	Final bool
}

func (Success) isOutcome() {}
func (Failure) isOutcome() {}
func (Timeout) isOutcome() {}
