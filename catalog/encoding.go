package catalog

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/qiniu/iconv"
)

// contentTypeCharsetPrefix marks where the charset starts in a
// "Content-Type: text/plain; charset=<enc>" header line.
var contentTypeCharsetPrefix = "charset="

// detectCharset scans the candidate header lines (everything before the
// first "#:" source-reference line, per spec.md §4.1) for a Content-Type
// field and returns its charset, or "" if none is declared or it is the
// unresolved placeholder "CHARSET".
func detectCharset(headerLines []string) string {
	for _, line := range headerLines {
		trimmed := strings.TrimSpace(dequote(line))
		if !strings.HasPrefix(trimmed, "Content-Type:") {
			continue
		}
		idx := strings.Index(trimmed, contentTypeCharsetPrefix)
		if idx < 0 {
			continue
		}
		cs := strings.TrimSpace(trimmed[idx+len(contentTypeCharsetPrefix):])
		cs = strings.TrimSuffix(cs, "\\n")
		cs = strings.TrimSpace(cs)
		if cs == "" || strings.EqualFold(cs, "CHARSET") {
			return ""
		}
		return cs
	}
	return ""
}

// decodeLine decodes one source line from charset into UTF-8. An empty or
// "utf-8" charset is a pass-through (validated, not converted).
func decodeLine(line []byte, charset string) (string, error) {
	if charset == "" || strings.EqualFold(charset, "utf-8") || strings.EqualFold(charset, "utf8") {
		if !utf8.Valid(line) {
			return "", fmt.Errorf("invalid utf-8")
		}
		return string(line), nil
	}
	cd, err := iconv.Open("utf-8", charset)
	if err != nil {
		return "", err
	}
	defer cd.Close()
	out := make([]byte, len(line)*4+64)
	var result []byte
	in := line
	nLeft := len(in)
	for nLeft > 0 {
		n, nLeftRemaining, err := cd.Do(in[len(in)-nLeft:], nLeft, out)
		if err != nil {
			return "", err
		}
		result = append(result, out[:n]...)
		if nLeftRemaining >= nLeft {
			break
		}
		nLeft = nLeftRemaining
	}
	return string(result), nil
}

// encodeLine is the inverse of decodeLine, used by the serializer's atomic
// write (spec.md §4.2).
func encodeLine(line string, charset string) ([]byte, error) {
	if charset == "" || strings.EqualFold(charset, "utf-8") || strings.EqualFold(charset, "utf8") {
		return []byte(line), nil
	}
	cd, err := iconv.Open(charset, "utf-8")
	if err != nil {
		return nil, err
	}
	defer cd.Close()
	in := []byte(line)
	out := make([]byte, len(in)*4+64)
	var result []byte
	nLeft := len(in)
	for nLeft > 0 {
		n, nLeftRemaining, err := cd.Do(in[len(in)-nLeft:], nLeft, out)
		if err != nil {
			return nil, err
		}
		result = append(result, out[:n]...)
		if nLeftRemaining >= nLeft {
			break
		}
		nLeft = nLeftRemaining
	}
	return result, nil
}
