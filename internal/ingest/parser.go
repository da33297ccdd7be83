// Package ingest loads the repair knowledge base and builds its search index.
package ingest

import (
	"regexp"
	"strings"
)

// SectionDelimiter separates records in the knowledge base file.
const SectionDelimiter = "\n---\n"

var titlePattern = regexp.MustCompile(`(?m)^## 문제[:：](.+)$`)

// Record is one repair recipe. Its identity is its position in the corpus.
type Record struct {
	Title string
	Body  string
}

// Parse splits a corpus into records. Sections are trimmed and empty
// sections are dropped; bodies are otherwise kept verbatim.
func Parse(content string) []Record {
	sections := strings.Split(content, SectionDelimiter)

	records := make([]Record, 0, len(sections))
	for _, s := range sections {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		records = append(records, Record{Title: ExtractTitle(s), Body: s})
	}
	return records
}

// ExtractTitle returns the text after the first "## 문제:" heading, or ""
// when the section has none. Both ASCII and full-width colons are accepted.
func ExtractTitle(section string) string {
	m := titlePattern.FindStringSubmatch(section)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
