package utils

import (
	"unicode/utf8"
)

const (
	// Maximum octets of a content line, CRLF excluded
	LineLimit = 75
	CRLF      = "\r\n"
)

// Transform a normal writer into a writer that folds every content line it
// receives at 75 octets and terminates it with CRLF. Continuation lines
// start with a single space, so they carry 74 octets of payload. A fold
// never splits a UTF-8 sequence. Example:
//
//	var sb strings.Builder
//	writer := Split75wrapper(sb.WriteString)
//	writer("DESCRIPTION:" + strings.Repeat("x", 100))
//
// Output:
//
//	DESCRIPTION:xxx...x (75 octets)
//	 xxx...x
func Split75wrapper(writer func(string) (int, error)) func(string) (int, error) {
	return func(str string) (int, error) {
		total := 0
		for i, chunk := range foldChunks(str) {
			if i > 0 {
				chunk = " " + chunk
			}
			n, err := writer(chunk + CRLF)
			total += n
			if err != nil {
				return total, err
			}
		}
		return total, nil
	}
}

// Fold a single content line and return it with CRLF line endings
func FoldLine(str string) string {
	var out []byte
	for i, chunk := range foldChunks(str) {
		if i > 0 {
			out = append(out, ' ')
		}
		out = append(out, chunk...)
		out = append(out, CRLF...)
	}
	return string(out)
}

func foldChunks(str string) []string {
	if len(str) <= LineLimit {
		return []string{str}
	}
	chunks := make([]string, 0, len(str)/(LineLimit-1)+1)
	limit := LineLimit
	for len(str) > limit {
		cut := limit
		// back off to the start of a rune
		for cut > 0 && !utf8.RuneStart(str[cut]) {
			cut--
		}
		if cut == 0 {
			cut = limit
		}
		chunks = append(chunks, str[:cut])
		str = str[cut:]
		limit = LineLimit - 1
	}
	return append(chunks, str)
}
