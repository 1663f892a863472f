package server

import (
	"errors"
	"io"
	"net/http"

	"moodmusic/internal/logger"
	"moodmusic/internal/model"
	"moodmusic/internal/recommend"
	"moodmusic/internal/sentiment"
	"moodmusic/internal/validation"

	"github.com/gin-gonic/gin"
)

// 对外的错误信息，内部细节只写日志
const (
	msgModelNotLoaded  = "Model not loaded"
	msgSomethingWrong  = "Something went wrong"
	msgFetchMusicError = "Error fetching music"
	msgInvalidBody     = "invalid request body"
)

// ClassifyRequest 情感分类请求
type ClassifyRequest struct {
	Text string `json:"text" validate:"required"`
}

// SentimentBody 分类结果
type SentimentBody struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ClassifyResponse 情感分类响应
type ClassifyResponse struct {
	Sentiment SentimentBody `json:"sentiment"`
	Mood      model.Mood    `json:"mood"`
}

// RecommendRequest 推荐请求，所有字段可选
// 取值不做枚举校验，未知取值只是不会匹配
type RecommendRequest struct {
	Mood       string `json:"mood" validate:"max=128"`
	Region     string `json:"region" validate:"max=128"`
	Preference string `json:"preference" validate:"max=128"`
}

// RecommendResponse 推荐响应
type RecommendResponse struct {
	Songs []model.Item `json:"songs"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status      string `json:"status"`
	Classifier  string `json:"classifier"`
	CatalogSize int    `json:"catalog_size"`
}

// handleClassify 处理情感分类请求
// POST /analyze_sentiment, POST /api/v1/classify
func (s *Server) handleClassify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := s.classifier.Classify(c.Request.Context(), req.Text)
	if err != nil {
		l := logger.Ctx(c.Request.Context())
		switch {
		case errors.Is(err, sentiment.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": sentiment.ErrValidation.Error()})
		case errors.Is(err, sentiment.ErrModelUnavailable):
			l.Warn().Err(err).Msg("classify rejected: model unavailable")
			c.JSON(http.StatusInternalServerError, gin.H{"error": msgModelNotLoaded})
		default:
			l.Error().Err(err).Msg("classify failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": msgSomethingWrong})
		}
		return
	}

	c.JSON(http.StatusOK, ClassifyResponse{
		Sentiment: SentimentBody{Label: res.Label, Score: res.Score},
		Mood:      res.Mood,
	})
}

// handleRecommend 处理推荐请求
// POST /get_music, POST /api/v1/recommend
func (s *Server) handleRecommend(c *gin.Context) {
	var req RecommendRequest
	// 空请求体等价于空查询
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	q := recommend.NormalizeQuery(req.Mood, req.Region, req.Preference)
	songs, _, err := s.recommender.Recommend(c.Request.Context(), q)
	if err != nil {
		l := logger.Ctx(c.Request.Context())
		l.Error().Err(err).Msg("recommend failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgFetchMusicError})
		return
	}

	c.JSON(http.StatusOK, RecommendResponse{Songs: songs})
}

// handleHealth GET /health
func (s *Server) handleHealth(c *gin.Context) {
	classifier := "unavailable"
	if s.classifier.Ready() {
		classifier = "ready"
	}
	c.JSON(http.StatusOK, HealthResponse{
		Status:      "ok",
		Classifier:  classifier,
		CatalogSize: s.opts.CatalogSize,
	})
}
