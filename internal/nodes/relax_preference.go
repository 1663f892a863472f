package nodes

import (
	"fmt"

	"moodmusic/internal/model"
	"moodmusic/internal/workflow"
)

// RelaxPreferenceNode 第二阶段 (b)：流派 OR 歌手，保持曲库顺序
type RelaxPreferenceNode struct {
	name string
}

func NewRelaxPreferenceNode(cfg workflow.NodeConfig) (workflow.Node, error) {
	return &RelaxPreferenceNode{name: cfg.Name}, nil
}

func (n *RelaxPreferenceNode) Name() string { return n.name }
func (n *RelaxPreferenceNode) Type() string { return "relax_preference" }

func (n *RelaxPreferenceNode) Execute(ctx *workflow.Context) error {
	if ctx.HasCandidates() {
		return nil
	}

	pref := ctx.Query.Preference
	if pref == "" {
		return nil
	}

	var kept []model.Item
	for _, item := range ctx.Catalog {
		if item.Genre == pref || item.Artist == pref {
			kept = append(kept, item)
		}
	}

	ctx.SetResult(StageRelaxedPreference, kept)
	ctx.AddLog(fmt.Sprintf("Relax preference (%s) matched %d items", n.name, len(kept)))
	return nil
}
