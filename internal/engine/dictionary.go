package engine

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// charset maps CTC class indices to characters. Index 0 is the blank.
type charset struct {
	chars []string
}

// loadCharset reads a recognition dictionary, one character per line.
// The blank class is implicit at index 0; dictionary entries start at 1.
func loadCharset(path string) (*charset, error) {
	f, err := os.Open(path) //nolint:gosec // G304: dictionary path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("open dictionary %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	chars := []string{""} // blank
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			line = " "
		}
		chars = append(chars, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dictionary %s: %w", path, err)
	}
	if len(chars) < 2 {
		return nil, fmt.Errorf("dictionary %s is empty", path)
	}
	return &charset{chars: chars}, nil
}

// decode converts class indices to a string, skipping out-of-range indices.
func (c *charset) decode(indices []int) string {
	var sb strings.Builder
	for _, idx := range indices {
		if idx <= 0 || idx >= len(c.chars) {
			continue
		}
		sb.WriteString(c.chars[idx])
	}
	return sb.String()
}

// size returns the number of classes including the blank.
func (c *charset) size() int { return len(c.chars) }
