package textextract

import (
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// extractJSON flattens a JSON document into "path: value" lines so the
// same regex catalog used for PDFs applies.
func extractJSON(data []byte) Result {
	if !gjson.ValidBytes(data) {
		return Result{Kind: ErrCorrupt, Detail: "invalid json"}
	}

	var lines []string
	flatten("", gjson.ParseBytes(data), &lines)

	sort.Strings(lines)

	blocks := make([]Block, len(lines))
	for i, l := range lines {
		blocks[i] = Block{Text: l}
	}

	return Result{Text: strings.Join(lines, "\n"), Blocks: blocks}
}

func flatten(prefix string, v gjson.Result, out *[]string) {
	switch {
	case v.IsObject():
		v.ForEach(func(key, value gjson.Result) bool {
			flatten(join(prefix, key.String()), value, out)
			return true
		})
	case v.IsArray():
		i := 0
		v.ForEach(func(_, value gjson.Result) bool {
			flatten(join(prefix, strconv.Itoa(i)), value, out)
			i++

			return true
		})
	case v.Type == gjson.Null:
	default:
		*out = append(*out, prefix+": "+v.String())
	}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}

	return prefix + "." + key
}
