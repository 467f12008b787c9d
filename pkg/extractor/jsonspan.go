package extractor

import "strings"

// SpanStrategy picks the substring of a model reply that should be decoded
// as the recipe JSON object.
type SpanStrategy func(s string) (string, bool)

// NaiveSpan slices from the first "{" to the first "}" inclusive. This is
// the historical behavior: it truncates the object whenever the body nests
// braces before the true closing brace, producing an invalid span. Kept as
// the default because switching changes extraction results for replies the
// system already handles.
func NaiveSpan(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.Index(s, "}")
	if start < 0 || end < 0 || end < start {
		return "", false
	}
	return s[start : end+1], true
}

// BalancedSpan slices from the first "{" to its matching close brace,
// tracking brace depth and skipping braces inside JSON string values.
func BalancedSpan(s string) (string, bool) {
	start := strings.Index(s, "{")
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}
	return "", false
}

// SpanStrategyByName maps a config name to a strategy, defaulting to naive.
func SpanStrategyByName(name string) SpanStrategy {
	if name == "balanced" {
		return BalancedSpan
	}
	return NaiveSpan
}
