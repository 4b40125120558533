package ingest

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/andreyxaxa/Photo-Ingest/internal/entity"
	"github.com/araddon/dateparse"
)

// shortcutDate matches the iOS Shortcuts rendering, e.g. "2025年9月25日 22:15".
var shortcutDate = regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日\s*(\d{1,2}):(\d{1,2})`)

// ParseClientTime reads a caller timestamp. The localized form is taken as wall
// time in loc; anything else goes through dateparse in loc. Unparsable input is absent.
func ParseClientTime(s string, loc *time.Location) entity.Optional[time.Time] {
	s = strings.TrimSpace(s)
	if s == "" {
		return entity.None[time.Time]()
	}

	if m := shortcutDate.FindStringSubmatch(s); m != nil {
		n := make([]int, 5)
		for i := range n {
			n[i], _ = strconv.Atoi(m[i+1])
		}

		return entity.Some(time.Date(n[0], time.Month(n[1]), n[2], n[3], n[4], 0, 0, loc))
	}

	t, err := dateparse.ParseIn(s, loc)
	if err != nil {
		return entity.None[time.Time]()
	}

	return entity.Some(t)
}

func parsePositiveInt(s string) entity.Optional[int] {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return entity.None[int]()
	}

	return entity.Some(n)
}

func parseSize(s string) entity.Optional[int64] {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 0 {
		return entity.None[int64]()
	}

	return entity.Some(n)
}

func optionalString(s string) entity.Optional[string] {
	if s = strings.TrimSpace(s); s == "" {
		return entity.None[string]()
	}

	return entity.Some(s)
}
