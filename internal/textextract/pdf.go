package textextract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

func extractPDF(data []byte) (res Result) {
	// The pdf package panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			res = Result{Kind: ErrCorrupt, Detail: fmt.Sprint(r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Result{Kind: ErrCorrupt, Detail: err.Error()}
	}

	var (
		sb     strings.Builder
		blocks []Block
	)

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			return Result{Kind: ErrCorrupt, Detail: fmt.Sprintf("page %d: %v", i, err)}
		}

		for _, row := range rows {
			words := make([]string, 0, len(row.Content))
			for _, word := range row.Content {
				words = append(words, word.S)
			}

			line := strings.TrimSpace(strings.Join(words, " "))
			if line == "" {
				continue
			}

			blocks = append(blocks, Block{Page: i, Y: float64(row.Position), Text: line})

			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}

	return Result{Text: sb.String(), Blocks: blocks}
}
