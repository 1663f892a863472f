// Package server HTTP API，基于 gin
package server

import (
	"context"
	"net/http"
	"time"

	"moodmusic/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// Classifier 情感分类能力，由 sentiment.Adapter 实现
type Classifier interface {
	Classify(ctx context.Context, text string) (model.SentimentResult, error)
	Ready() bool
}

// Recommender 推荐能力，由 recommend.Service 实现
type Recommender interface {
	Recommend(ctx context.Context, q model.Query) ([]model.Item, string, error)
}

// Options 服务器参数
type Options struct {
	// RateLimit 全局每秒请求数上限，<=0 表示不限流
	RateLimit float64
	Burst     int
	// RequestTimeout 单个请求的处理超时，<=0 表示不设置
	RequestTimeout time.Duration
	CatalogSize    int
}

// Server 代表 HTTP API 服务器
type Server struct {
	router      *gin.Engine
	classifier  Classifier
	recommender Recommender
	opts        Options
	limiter     *rate.Limiter
}

// NewServer 创建新的 HTTP 服务器
func NewServer(classifier Classifier, recommender Recommender, opts Options) *Server {
	s := &Server{
		router:      gin.New(),
		classifier:  classifier,
		recommender: recommender,
		opts:        opts,
	}
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = int(opts.RateLimit)
			if burst < 1 {
				burst = 1
			}
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	s.router.Use(gin.Recovery(), s.requestIDMiddleware(), s.metricsMiddleware(), s.corsMiddleware())
	s.setupRoutes()
	return s
}

// Handler 返回 http.Handler，交给 http.Server 使用
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/")
	api.Use(s.rateLimitMiddleware(), s.timeoutMiddleware())

	// 兼容旧路径
	api.POST("/analyze_sentiment", s.handleClassify)
	api.POST("/get_music", s.handleRecommend)

	v1 := api.Group("/api/v1")
	v1.POST("/classify", s.handleClassify)
	v1.POST("/recommend", s.handleRecommend)
}
