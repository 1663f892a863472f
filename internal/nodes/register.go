package nodes

import "moodmusic/internal/workflow"

// Register 注册所有推荐阶段节点
func Register(registry *workflow.Registry) {
	registry.Register("score_strict", NewStrictScoreNode)
	registry.Register("relax_attribute", NewRelaxAttributeNode)
	registry.Register("relax_preference", NewRelaxPreferenceNode)
	registry.Register("fallback_random", NewFallbackRandomNode)
}

// DefaultPipeline 默认的三阶段渐进放宽流程
func DefaultPipeline() []workflow.NodeConfig {
	return []workflow.NodeConfig{
		{Name: "strict", Type: "score_strict"},
		{Name: "relax_mood_region", Type: "relax_attribute"},
		{Name: "relax_preference", Type: "relax_preference"},
		{Name: "random", Type: "fallback_random", Config: map[string]interface{}{"size": DefaultFallbackSize}},
	}
}
