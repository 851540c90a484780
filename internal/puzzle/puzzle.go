// internal/puzzle/puzzle.go
//
// Puzzle entity for the cryptogram engine.
// Responsibilities:
//   - Immutable puzzle data as supplied by the catalog (quote + encoded form).
//   - Encoding variants: letter substitution and number substitution.
//   - Per-cell token derivation (one token per solution character).
//   - Stable synthesized identity so attempts re-associate across restarts.
//
// Notes:
//   - Puzzles arrive already encoded; this package never encodes anything.
//   - The numbers variant is stored comma-joined ("20,8,5, ,4,15,7") with
//     separator characters kept verbatim between commas.

package puzzle

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Encoding identifies the substitution alphabet of a puzzle. Attempts and
// statistics are partitioned by it.
type Encoding string

const (
	EncodingLetters Encoding = "Letters"
	EncodingNumbers Encoding = "Numbers"
)

// Difficulty tags a quote in the catalog.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

var errLengthMismatch = errors.New("encoded text and solution length differ")

// Puzzle is one playable cryptogram. Immutable once constructed.
type Puzzle struct {
	QuoteID int64     // catalog row id (0 for the built-in fallback)
	ID      uuid.UUID // synthesized from QuoteID, stable across runs

	Encoding    Encoding
	EncodedText string   // display form as stored in the catalog
	Tokens      []string // one encoded token per solution character

	Solution   string // uppercased
	Author     string
	Hint       string
	Difficulty Difficulty
	Length     int // character count of the solution
}

// New builds a validated puzzle from catalog data. The solution is
// normalized to uppercase; the encoded text is tokenized per the encoding
// variant and checked against the solution length.
func New(quoteID int64, enc Encoding, encoded, solution, author, hint string, diff Difficulty) (*Puzzle, error) {
	solution = strings.ToUpper(solution)
	tokens, err := tokenize(enc, encoded)
	if err != nil {
		return nil, err
	}
	p := &Puzzle{
		QuoteID:     quoteID,
		ID:          IDForQuote(quoteID),
		Encoding:    enc,
		EncodedText: encoded,
		Tokens:      tokens,
		Solution:    solution,
		Author:      author,
		Hint:        hint,
		Difficulty:  diff,
		Length:      len([]rune(solution)),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the invariants the engine relies on: the token count must
// match the solution character count, and the solution must contain at least
// one letter (a puzzle with nothing to solve is a catalog defect).
func (p *Puzzle) Validate() error {
	runes := []rune(p.Solution)
	if len(p.Tokens) != len(runes) {
		return fmt.Errorf("quote %d: %w (%d tokens, %d chars)",
			p.QuoteID, errLengthMismatch, len(p.Tokens), len(runes))
	}
	for _, r := range runes {
		if unicode.IsLetter(r) {
			return nil
		}
	}
	return fmt.Errorf("quote %d: solution has no letters", p.QuoteID)
}

// tokenize splits an encoded text into per-cell tokens.
// Letters variant: one token per rune, uppercased.
// Numbers variant: comma-separated; digit tokens are letter cells, anything
// else (space, punctuation) is a separator kept verbatim.
func tokenize(enc Encoding, encoded string) ([]string, error) {
	switch enc {
	case EncodingNumbers:
		if encoded == "" {
			return nil, errors.New("empty encoded text")
		}
		return strings.Split(encoded, ","), nil
	case EncodingLetters, "":
		if encoded == "" {
			return nil, errors.New("empty encoded text")
		}
		runes := []rune(strings.ToUpper(encoded))
		tokens := make([]string, len(runes))
		for i, r := range runes {
			tokens[i] = string(r)
		}
		return tokens, nil
	default:
		return nil, fmt.Errorf("unknown encoding %q", enc)
	}
}

// IDForQuote synthesizes the stable puzzle identifier for a catalog quote.
// SHA1-namespace UUIDs are deterministic, so the same quote always maps to
// the same id no matter when or where it is loaded.
func IDForQuote(quoteID int64) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("cryptogram:quote:"+strconv.FormatInt(quoteID, 10)))
}
