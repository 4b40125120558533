package ingest

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/andreyxaxa/Photo-Ingest/internal/entity"
)

// BaseTags are present on every record.
var BaseTags = []string{"doubao", "cat"}

var deviceTags = []struct{ keyword, tag string }{
	{"iphone", "iPhone"},
	{"ipad", "iPad"},
}

var placeSuffixes = []string{"市", "区", "省"}

// TagInput is everything tag derivation looks at.
type TagInput struct {
	Device       entity.Optional[string]
	Location     entity.Optional[entity.Location]
	ShotTime     time.Time
	Extension    entity.Optional[string]
	OriginalName string
}

// GenerateTags is deterministic and keeps first-insertion order.
func GenerateTags(in TagInput) []string {
	tags := newTagSet()
	tags.add(BaseTags...)

	if device, ok := in.Device.Get(); ok {
		lower := strings.ToLower(device)
		for _, d := range deviceTags {
			if strings.Contains(lower, d.keyword) {
				tags.add(d.tag)
			}
		}
	}

	if loc, ok := in.Location.Get(); ok {
		tags.add(stripPlaceSuffix(loc.City.OrElse("")), stripPlaceSuffix(loc.Province.OrElse("")))
	}

	if !in.ShotTime.IsZero() {
		tags.add(PeriodOfDay(in.ShotTime.Hour()), fmt.Sprintf("%d月", int(in.ShotTime.Month())))
	}

	ext := in.Extension.OrElse(path.Ext(in.OriginalName))
	tags.add(strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(ext), ".")))

	return tags.list
}

// PeriodOfDay buckets an hour: [6,12) 上午, [12,18) 下午, [18,22) 傍晚, otherwise 深夜.
func PeriodOfDay(hour int) string {
	switch {
	case hour >= 6 && hour < 12:
		return "上午"
	case hour >= 12 && hour < 18:
		return "下午"
	case hour >= 18 && hour < 22:
		return "傍晚"
	default:
		return "深夜"
	}
}

func stripPlaceSuffix(s string) string {
	s = strings.TrimSpace(s)
	for trimmed := true; trimmed; {
		trimmed = false
		for _, suffix := range placeSuffixes {
			if strings.HasSuffix(s, suffix) {
				s = strings.TrimSuffix(s, suffix)
				trimmed = true
			}
		}
	}

	return s
}

type tagSet struct {
	seen map[string]struct{}
	list []string
}

func newTagSet() *tagSet {
	return &tagSet{seen: make(map[string]struct{})}
}

func (s *tagSet) add(tags ...string) {
	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, ok := s.seen[t]; ok {
			continue
		}
		s.seen[t] = struct{}{}
		s.list = append(s.list, t)
	}
}
