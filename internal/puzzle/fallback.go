package puzzle

// Built-in puzzle served when the catalog is unreachable, so the game is
// always playable. Encoded forms are fixed constants, not computed here.
const (
	fallbackSolution = "PRACTICE MAKES PERFECT"
	fallbackAuthor   = "Proverb"
	fallbackHint     = "Repetition is the path to mastery"

	fallbackLetters = "CENPGVPR ZNXRF CRESRPG"
	fallbackNumbers = "16,18,1,3,20,9,3,5, ,13,1,11,5,19, ,16,5,18,6,5,3,20"
)

// Fallback returns the built-in puzzle in the requested encoding variant.
func Fallback(enc Encoding) *Puzzle {
	encoded := fallbackLetters
	if enc == EncodingNumbers {
		encoded = fallbackNumbers
	} else {
		enc = EncodingLetters
	}
	p, err := New(0, enc, encoded, fallbackSolution, fallbackAuthor, fallbackHint, DifficultyEasy)
	if err != nil {
		// Unreachable as long as the constants above stay in sync.
		panic("puzzle: invalid fallback: " + err.Error())
	}
	return p
}
