package nodes

import (
	"fmt"

	"moodmusic/internal/model"
	"moodmusic/internal/workflow"
)

// RelaxAttributeNode 第二阶段 (a)：情绪 OR 地区，保持曲库顺序
type RelaxAttributeNode struct {
	name string
}

func NewRelaxAttributeNode(cfg workflow.NodeConfig) (workflow.Node, error) {
	return &RelaxAttributeNode{name: cfg.Name}, nil
}

func (n *RelaxAttributeNode) Name() string { return n.name }
func (n *RelaxAttributeNode) Type() string { return "relax_attribute" }

func (n *RelaxAttributeNode) Execute(ctx *workflow.Context) error {
	if ctx.HasCandidates() {
		return nil
	}

	q := ctx.Query
	if q.Mood == "" && q.Region == "" {
		return nil
	}

	var kept []model.Item
	for _, item := range ctx.Catalog {
		// 未设置的字段不参与匹配
		if (q.Mood != "" && item.Mood == q.Mood) || (q.Region != "" && item.Region == q.Region) {
			kept = append(kept, item)
		}
	}

	ctx.SetResult(StageRelaxedAttribute, kept)
	ctx.AddLog(fmt.Sprintf("Relax attribute (%s) matched %d items", n.name, len(kept)))
	return nil
}
