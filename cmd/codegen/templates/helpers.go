package templates

import (
	"strconv"
	"strings"
)

const commentWidth = 74

// docLines wraps "name doc" into "// " comment lines no wider than
// commentWidth, not counting indentation.
func docLines(name, doc string) []string {
	var (
		lines []string
		sb    strings.Builder
	)
	sb.WriteString("// ")
	sb.WriteString(name)
	for _, word := range strings.Fields(doc) {
		if sb.Len()+1+len(word) > commentWidth {
			lines = append(lines, sb.String())
			sb.Reset()
			sb.WriteString("// ")
			sb.WriteString(word)
			continue
		}
		sb.WriteByte(' ')
		sb.WriteString(word)
	}
	return append(lines, sb.String())
}

func quoted(s string) string {
	return strconv.Quote(s)
}
