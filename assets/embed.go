package assets

import (
	"bufio"
	"embed"
	"fmt"
	"strings"
)

//go:embed quotes.txt
var FS embed.FS

// Quote is one starter catalog entry as shipped in quotes.txt. The encoded
// variants are pre-built; this package never derives ciphers.
type Quote struct {
	Difficulty     string
	Text           string
	Author         string
	Hint           string
	EncodedLetters string
	EncodedNumbers string
}

// StarterQuotes parses the embedded starter set: one quote per line,
// pipe-delimited, blank lines and # comments skipped.
func StarterQuotes() ([]Quote, error) {
	f, err := FS.Open("quotes.txt")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []Quote
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		fields := strings.Split(s, "|")
		if len(fields) != 6 {
			return nil, fmt.Errorf("quotes.txt line %d: want 6 fields, got %d", line, len(fields))
		}
		out = append(out, Quote{
			Difficulty:     fields[0],
			Text:           fields[1],
			Author:         fields[2],
			Hint:           fields[3],
			EncodedLetters: fields[4],
			EncodedNumbers: fields[5],
		})
	}
	return out, sc.Err()
}
