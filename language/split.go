package language

import "strings"

// SplitDirectives breaks a raw model response into per-directive chunks.
// The contract is one directive per line, except that an open triple-quoted
// string carries the directive across line breaks until it closes.
func SplitDirectives(response string) []string {
	var chunks []string
	var current strings.Builder

	inTriple := false
	inQuote := false

	i := 0
	for i < len(response) {
		c := response[i]

		switch {
		case inTriple:
			if strings.HasPrefix(response[i:], `"""`) {
				current.WriteString(`"""`)
				i += 3
				inTriple = false
				continue
			}
			current.WriteByte(c)
			i++
		case inQuote:
			if c == '\\' && i+1 < len(response) {
				current.WriteByte(c)
				current.WriteByte(response[i+1])
				i += 2
				continue
			}
			if c == '"' || c == '\n' {
				// a bare newline also closes a broken single-line string
				inQuote = false
			}
			current.WriteByte(c)
			i++
		case strings.HasPrefix(response[i:], `"""`):
			current.WriteString(`"""`)
			i += 3
			inTriple = true
		case c == '"':
			current.WriteByte(c)
			i++
			inQuote = true
		case c == '\n':
			if chunk := strings.TrimSpace(current.String()); chunk != "" {
				chunks = append(chunks, chunk)
			}
			current.Reset()
			i++
		default:
			current.WriteByte(c)
			i++
		}
	}

	if chunk := strings.TrimSpace(current.String()); chunk != "" {
		chunks = append(chunks, chunk)
	}

	return chunks
}
