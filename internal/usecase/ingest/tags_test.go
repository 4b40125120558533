package ingest

import (
	"testing"
	"time"

	"github.com/andreyxaxa/Photo-Ingest/internal/entity"
	"github.com/stretchr/testify/assert"
)

func TestGenerateTags(t *testing.T) {
	loc, _ := ParseLocation("西湖\n杭州市\n浙江省\n中国").Get()

	tags := GenerateTags(TagInput{
		Device:       entity.Some("Apple iPhone 15"),
		Location:     entity.Some(loc),
		ShotTime:     time.Date(2025, 9, 25, 14, 0, 0, 0, cst),
		Extension:    entity.Some(".heic"),
		OriginalName: "IMG_1.JPG",
	})

	assert.Equal(t, []string{"doubao", "cat", "iPhone", "杭州", "浙江", "下午", "9月", "HEIC"}, tags)
}

func TestGenerateTags_Deterministic(t *testing.T) {
	in := TagInput{
		Device:       entity.Some("IPAD pro"),
		ShotTime:     time.Date(2025, 12, 1, 7, 0, 0, 0, cst),
		OriginalName: "a.png",
	}

	first := GenerateTags(in)
	assert.Equal(t, first, GenerateTags(in))
	assert.Equal(t, []string{"doubao", "cat", "iPad", "上午", "12月", "PNG"}, first)
}

func TestGenerateTags_BaseOnlyAndDedup(t *testing.T) {
	tags := GenerateTags(TagInput{Extension: entity.Some("cat")})
	assert.Equal(t, []string{"doubao", "cat", "CAT"}, tags)

	tags = GenerateTags(TagInput{})
	assert.Equal(t, BaseTags, tags)
}

func TestPeriodOfDay(t *testing.T) {
	cases := map[int]string{
		0: "深夜", 5: "深夜", 6: "上午", 11: "上午", 12: "下午",
		17: "下午", 18: "傍晚", 21: "傍晚", 22: "深夜", 23: "深夜",
	}
	for hour, want := range cases {
		assert.Equal(t, want, PeriodOfDay(hour), "hour %d", hour)
	}
}
