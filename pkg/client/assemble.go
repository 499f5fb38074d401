package client

import (
	"strings"
)

// Assemble merges the validated bodies of a call's requests into one CSV.
//
// A single body is returned as is, with empty-result sentinels mapped to "".
// With several bodies the first non-empty one is kept whole and every later
// one loses its header line, so the header appears exactly once.
func Assemble(bodies []string) string {
	if len(bodies) == 1 {
		return normalizeBody(bodies[0])
	}

	var b strings.Builder
	headerWritten := false
	for _, body := range bodies {
		body = normalizeBody(body)
		if body == "" {
			continue
		}

		if headerWritten {
			idx := strings.IndexByte(body, '\n')
			if idx < 0 {
				// header only
				continue
			}
			body = body[idx+1:]
			if body == "" {
				continue
			}
		}

		if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
			b.WriteByte('\n')
		}
		b.WriteString(body)
		headerWritten = true
	}
	return b.String()
}

func normalizeBody(body string) string {
	if isEmptyResult(body) {
		return ""
	}
	return body
}
