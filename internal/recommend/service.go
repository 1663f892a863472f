// Package recommend 推荐服务：把查询交给 workflow 引擎，归类错误并记录指标
package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"moodmusic/internal/catalog"
	"moodmusic/internal/logger"
	"moodmusic/internal/metrics"
	"moodmusic/internal/model"
	"moodmusic/internal/textnorm"
	"moodmusic/internal/workflow"
)

var (
	// ErrInternalFault 推荐流程内部故障 (节点错误或 panic)
	ErrInternalFault = errors.New("internal fault")
	// ErrEmptyCatalog 曲库为空，属于基础设施故障
	ErrEmptyCatalog = errors.New("catalog is empty")
)

// Service 推荐服务，无请求间状态
type Service struct {
	repo   catalog.Repository
	engine *workflow.Engine
}

// NewService 创建推荐服务
func NewService(repo catalog.Repository, engine *workflow.Engine) *Service {
	return &Service{repo: repo, engine: engine}
}

// Recommend 返回推荐结果和产出结果的阶段
// 曲库非空时结果至少包含一首歌
func (s *Service) Recommend(ctx context.Context, q model.Query) (songs []model.Item, stage string, err error) {
	start := time.Now()

	items := s.repo.All()
	if len(items) == 0 {
		return nil, "", fmt.Errorf("%w: %w", ErrInternalFault, ErrEmptyCatalog)
	}

	defer func() {
		if r := recover(); r != nil {
			songs, stage = nil, ""
			err = fmt.Errorf("%w: recommend panic: %v", ErrInternalFault, r)
		}
	}()

	wfCtx := workflow.NewContext(ctx, items, q)
	if runErr := s.engine.Run(wfCtx); runErr != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInternalFault, runErr)
	}

	songs = wfCtx.GetCandidates()
	stage = wfCtx.GetStage()
	if len(songs) == 0 {
		return nil, "", fmt.Errorf("%w: pipeline produced no songs", ErrInternalFault)
	}

	metrics.RecordRecommendation(stage, len(songs), time.Since(start))

	l := logger.Ctx(ctx)
	l.Debug().
		Str("mood", string(q.Mood)).
		Str("region", string(q.Region)).
		Str("preference", q.Preference).
		Str("stage", stage).
		Int("songs", len(songs)).
		Strs("trace", wfCtx.Logs()).
		Msg("recommendation produced")

	return songs, stage, nil
}

// NormalizeQuery 规范化请求字段
// mood/region 额外把空格和连字符转为下划线，未知取值原样保留，只是不会匹配任何条目
func NormalizeQuery(mood, region, preference string) model.Query {
	return model.Query{
		Mood:       model.Mood(textnorm.Enum(mood)),
		Region:     model.Region(textnorm.Enum(region)),
		Preference: textnorm.Field(preference),
	}
}
