package nodes

import (
	"fmt"
	"math/rand"
	"time"

	"moodmusic/internal/model"
	"moodmusic/internal/workflow"
)

// DefaultFallbackSize 兜底随机推荐的条数
const DefaultFallbackSize = 10

// FallbackRandomNode 第三阶段：从整个曲库中无放回随机抽样
type FallbackRandomNode struct {
	name string
	size int
	seed func() int64
}

func NewFallbackRandomNode(cfg workflow.NodeConfig) (workflow.Node, error) {
	size, err := intOption(cfg.Config, "size", DefaultFallbackSize)
	if err != nil {
		return nil, err
	}
	return NewFallbackRandom(cfg.Name, size, nil)
}

// NewFallbackRandom 直接构造节点，seed 为空时使用当前时间
func NewFallbackRandom(name string, size int, seed func() int64) (*FallbackRandomNode, error) {
	if size <= 0 {
		return nil, fmt.Errorf("node %s: size must be positive, got %d", name, size)
	}
	if seed == nil {
		seed = func() int64 { return time.Now().UnixNano() }
	}
	return &FallbackRandomNode{
		name: name,
		size: size,
		seed: seed,
	}, nil
}

func (n *FallbackRandomNode) Name() string { return n.name }
func (n *FallbackRandomNode) Type() string { return "fallback_random" }

// Size 最多抽取的条数
func (n *FallbackRandomNode) Size() int { return n.size }

func (n *FallbackRandomNode) Execute(ctx *workflow.Context) error {
	if ctx.HasCandidates() || len(ctx.Catalog) == 0 {
		return nil
	}

	// 每次执行新建 Rand，避免跨请求共享状态
	r := rand.New(rand.NewSource(n.seed()))

	count := n.size
	if count > len(ctx.Catalog) {
		count = len(ctx.Catalog)
	}

	picks := make([]model.Item, count)
	for i, idx := range r.Perm(len(ctx.Catalog))[:count] {
		picks[i] = ctx.Catalog[idx]
	}

	ctx.SetResult(StageRandom, picks)
	ctx.AddLog(fmt.Sprintf("Fallback random (%s) sampled %d of %d items", n.name, count, len(ctx.Catalog)))
	return nil
}
