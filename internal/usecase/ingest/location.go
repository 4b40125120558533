package ingest

import (
	"strings"

	"github.com/andreyxaxa/Photo-Ingest/internal/entity"
)

const country = "中国"

// ParseLocation splits a multi-line address block into its parts. The first
// non-empty line is the detail.
func ParseLocation(block string) entity.Optional[entity.Location] {
	var lines []string
	for _, l := range strings.Split(block, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return entity.None[entity.Location]()
	}

	loc := entity.Location{
		Raw:       block,
		Formatted: strings.Join(lines, ", "),
		Detail:    entity.Some(lines[0]),
	}

	loc.Country = firstLine(lines, func(l string) bool { return l == country })
	loc.Province = firstLine(lines, func(l string) bool { return strings.Contains(l, "省") })
	loc.City = firstLine(lines, func(l string) bool {
		return strings.Contains(l, "市") || strings.Contains(l, "区")
	})

	return entity.Some(loc)
}

func firstLine(lines []string, match func(string) bool) entity.Optional[string] {
	for _, l := range lines {
		if match(l) {
			return entity.Some(l)
		}
	}

	return entity.None[string]()
}
