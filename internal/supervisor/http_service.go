package supervisor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"moodmusic/internal/logger"

	"github.com/thejerf/suture/v4"
)

// HTTPServer http.Server 的生命周期方法
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPService 把 http.Server 包装成 suture.Service
// ctx 取消时优雅关闭；ListenAndServe 出错 (如端口被占用) 时终止整棵监督树，
// 重启无法解决这类错误
type HTTPService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
	name            string
}

// NewHTTPService 创建服务
func NewHTTPService(server HTTPServer, shutdownTimeout time.Duration) *HTTPService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPService{
		server:          server,
		shutdownTimeout: shutdownTimeout,
		name:            "http-server",
	}
}

// Serve 实现 suture.Service
func (h *HTTPService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			l := logger.With("supervisor")
			l.Error().Err(err).Str("service", h.name).Msg("http server failed, stopping")
			return suture.ErrTerminateSupervisorTree
		}
		return nil

	case <-ctx.Done():
		logger.Info("shutting down http server")
		// 原 ctx 已取消，关闭需要新的 ctx
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		defer cancel()

		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		<-errCh
		return ctx.Err()
	}
}

func (h *HTTPService) String() string {
	return h.name
}
