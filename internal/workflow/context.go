package workflow

import (
	"context"
	"sync"

	"moodmusic/internal/model"
)

// Context 承载一次推荐流程的所有状态
// Catalog 只读，Candidates 由各阶段节点写入
type Context struct {
	Ctx     context.Context
	Query   model.Query
	Catalog []model.Item

	mu         sync.RWMutex
	Candidates []model.Item // 当前结果集
	Stage      string       // 产出结果集的阶段
	TraceLog   []string     // 执行日志
}

// NewContext 创建一个新的工作流上下文
func NewContext(ctx context.Context, catalog []model.Item, query model.Query) *Context {
	return &Context{
		Ctx:        ctx,
		Query:      query,
		Catalog:    catalog,
		Candidates: make([]model.Item, 0),
		TraceLog:   make([]string, 0),
	}
}

// HasCandidates 是否已经有阶段产出了结果
func (c *Context) HasCandidates() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.Candidates) > 0
}

// GetCandidates 获取当前结果集的副本
func (c *Context) GetCandidates() []model.Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]model.Item, len(c.Candidates))
	copy(result, c.Candidates)
	return result
}

// SetResult 写入结果集并记录产出阶段
// 空结果不会覆盖阶段标记
func (c *Context) SetResult(stage string, items []model.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Candidates = items
	if len(items) > 0 {
		c.Stage = stage
	}
}

// GetStage 返回产出结果集的阶段，还没有结果时为空串
func (c *Context) GetStage() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Stage
}

// AddLog 添加追踪日志
func (c *Context) AddLog(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.TraceLog = append(c.TraceLog, msg)
}

// Logs 返回追踪日志副本
func (c *Context) Logs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]string, len(c.TraceLog))
	copy(result, c.TraceLog)
	return result
}

// Node 定义工作流中的执行节点
type Node interface {
	Name() string
	Type() string // e.g., "score_strict", "relax_attribute", "fallback_random"
	Execute(ctx *Context) error
}
