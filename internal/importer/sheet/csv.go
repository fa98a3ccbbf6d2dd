package sheet

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	enc "github.com/MrJamesThe3rd/forwarder/internal/encoding"
)

func readCSV(data []byte) ([][]string, error) {
	utf8r, err := enc.NewUTF8Reader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	br := bufio.NewReader(utf8r)

	peek, _ := br.Peek(4096)

	reader := csv.NewReader(br)
	reader.Comma = sniffDelimiter(string(peek))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	return rows, nil
}

// sniffDelimiter picks the separator that splits the opening lines most
// consistently. Semicolons win ties since they are the regional default.
func sniffDelimiter(sample string) rune {
	lines := strings.Split(strings.ReplaceAll(sample, "\r\n", "\n"), "\n")
	if len(lines) > 5 {
		lines = lines[:5]
	}

	best, bestScore := ';', 0

	for _, d := range []rune{';', ',', '\t', '|'} {
		score := 0

		for _, l := range lines {
			score += strings.Count(l, string(d))
		}

		if score > bestScore {
			best, bestScore = d, score
		}
	}

	return best
}
