package response

import (
	"fmt"

	"github.com/andreyxaxa/Photo-Ingest/internal/entity"
)

type (
	Stats struct {
		entity.Stats
		FunFacts FunFacts `json:"funFacts"`
	}

	FunFacts struct {
		Description string `json:"description"`
		Emoji       string `json:"emoji"`
		Message     string `json:"message"`
	}
)

func NewStats(s entity.Stats) Stats {
	facts := FunFacts{
		Description: "豆包照片收藏统计",
		Emoji:       "📸🐱",
	}

	switch {
	case s.Error != "":
		facts.Message = "统计数据暂时不可用，但服务正常运行中"
	case s.TotalImages > 0:
		facts.Message = fmt.Sprintf("已经收集了 %d 张豆包的珍贵时刻！", s.TotalImages)
	default:
		facts.Message = "还没有豆包的照片，快来上传第一张吧！"
	}

	return Stats{Stats: s, FunFacts: facts}
}
