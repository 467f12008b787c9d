package models

import "strings"

// The store keeps ingredient and instruction lists as a single column:
// items joined with ";" after escaping "\", "," and ";" in each item.
// SplitList(JoinList(xs)) == xs for any xs free of raw control bytes.

var listEscaper = strings.NewReplacer(
	`\`, `\\`,
	`,`, `\,`,
	`;`, `\;`,
)

// JoinList serializes a string list into the escaped ";"-joined form.
func JoinList(items []string) string {
	escaped := make([]string, len(items))
	for i, item := range items {
		escaped[i] = listEscaper.Replace(item)
	}
	return strings.Join(escaped, ";")
}

// SplitList reverses JoinList. It splits on unescaped ";" only, then
// unescapes each item.
func SplitList(s string) []string {
	if s == "" {
		// JoinList(nil) is ""; the round trip must yield no items, not one
		// empty item.
		return nil
	}

	var items []string
	var cur strings.Builder
	escaped := false

	for i := 0; i < len(s); i++ {
		ch := s[i]
		if escaped {
			switch ch {
			case '\\', ',', ';':
				cur.WriteByte(ch)
			default:
				// Unknown escape, keep it verbatim.
				cur.WriteByte('\\')
				cur.WriteByte(ch)
			}
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			escaped = true
		case ';':
			items = append(items, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	if escaped {
		cur.WriteByte('\\')
	}
	return append(items, cur.String())
}
