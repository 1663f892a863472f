package nodes

import (
	"fmt"
	"sort"

	"moodmusic/internal/model"
	"moodmusic/internal/workflow"
)

// Weights 各匹配项的加分
type Weights struct {
	Mood   int
	Region int
	Genre  int
	Artist int
}

// DefaultWeights 情绪权重最高，其次是地区和歌手，流派最低
var DefaultWeights = Weights{Mood: 3, Region: 2, Genre: 1, Artist: 2}

// Score 计算单个条目的相关度，各项独立累加
// Preference 同时等于 genre 和 artist 时两项都加分
func Score(item model.Item, q model.Query, w Weights) int {
	relevance := 0
	if q.Mood != "" && item.Mood == q.Mood {
		relevance += w.Mood
	}
	if q.Region != "" && item.Region == q.Region {
		relevance += w.Region
	}
	if q.Preference != "" {
		if item.Genre == q.Preference {
			relevance += w.Genre
		}
		if item.Artist == q.Preference {
			relevance += w.Artist
		}
	}
	return relevance
}

// Rank 为整个曲库打分，丢弃零分条目，按分数降序稳定排序
func Rank(catalog []model.Item, q model.Query, w Weights) []model.ScoredItem {
	scored := make([]model.ScoredItem, 0, len(catalog))
	for _, item := range catalog {
		if relevance := Score(item, q, w); relevance > 0 {
			scored = append(scored, model.ScoredItem{Item: item, Relevance: relevance})
		}
	}
	// 同分保持曲库原始顺序
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Relevance > scored[j].Relevance
	})
	return scored
}

// StrictScoreNode 第一阶段：加权打分
type StrictScoreNode struct {
	name    string
	weights Weights
	limit   int
}

func NewStrictScoreNode(cfg workflow.NodeConfig) (workflow.Node, error) {
	w := DefaultWeights
	var err error
	if w.Mood, err = intOption(cfg.Config, "mood_weight", w.Mood); err != nil {
		return nil, err
	}
	if w.Region, err = intOption(cfg.Config, "region_weight", w.Region); err != nil {
		return nil, err
	}
	if w.Genre, err = intOption(cfg.Config, "genre_weight", w.Genre); err != nil {
		return nil, err
	}
	if w.Artist, err = intOption(cfg.Config, "artist_weight", w.Artist); err != nil {
		return nil, err
	}
	if w.Mood < 0 || w.Region < 0 || w.Genre < 0 || w.Artist < 0 {
		return nil, fmt.Errorf("node %s: weights must be non-negative", cfg.Name)
	}

	limit, err := intOption(cfg.Config, "limit", 0)
	if err != nil {
		return nil, err
	}

	return &StrictScoreNode{
		name:    cfg.Name,
		weights: w,
		limit:   limit,
	}, nil
}

func (n *StrictScoreNode) Name() string { return n.name }
func (n *StrictScoreNode) Type() string { return "score_strict" }

func (n *StrictScoreNode) Execute(ctx *workflow.Context) error {
	if ctx.HasCandidates() {
		return nil
	}

	scored := Rank(ctx.Catalog, ctx.Query, n.weights)

	// 截断
	if n.limit > 0 && len(scored) > n.limit {
		scored = scored[:n.limit]
	}

	items := make([]model.Item, len(scored))
	for i, s := range scored {
		items[i] = s.Item
	}

	ctx.SetResult(StageStrict, items)
	ctx.AddLog(fmt.Sprintf("Strict score (%s) matched %d items", n.name, len(items)))
	return nil
}
