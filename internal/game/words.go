package game

import (
	"bufio"
	"os"
	"strings"
)

// The pool the session falls back to when no word file is configured.
var defaultWords = []string{"AUTOMOBILE", "DRESS", "LAPTOP", "TABLE", "CHARGER"}

func DefaultWords() []string {
	words := make([]string, len(defaultWords))
	copy(words, defaultWords)
	return words
}

// LoadWords reads a newline-delimited word file. Blank lines are skipped and
// words are uppercased so guesses compare case-insensitively against a
// canonical form.
func LoadWords(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word == "" {
			continue
		}
		words = append(words, strings.ToUpper(word))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return words, nil
}
