package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/LJTian/JobAlert/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type RunLister interface {
	ListRuns(ctx context.Context, limit int) ([]storage.Run, error)
}

// Trigger TryRunOnce 在已有一轮执行时返回 false，不排队
type Trigger interface {
	TryRunOnce(ctx context.Context) (<-chan string, bool)
	DailyAt() string
	NextRun() time.Time
}

type Server struct {
	runs     RunLister
	trigger  Trigger
	gatherer prometheus.Gatherer
	logger   *zap.Logger
}

// NewServer runs 为空表示未启用运行记录
func NewServer(runs RunLister, trigger Trigger, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{runs: runs, trigger: trigger, gatherer: gatherer, logger: logger}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	v1 := r.Group("/api/v1")
	{
		v1.GET("/runs", s.listRuns)
		v1.GET("/schedule", s.schedule)
		v1.POST("/run", s.runNow)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listRuns(c *gin.Context) {
	if s.runs == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"code":    "journal_disabled",
			"message": "run journal is not configured",
		})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}

	runs, err := s.runs.ListRuns(c.Request.Context(), limit)
	if err != nil {
		s.logger.Error("list runs failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "internal_error",
			"message": "internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    runs,
	})
}

func (s *Server) schedule(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data": gin.H{
			"dailyAt": s.trigger.DailyAt(),
			"next":    s.trigger.NextRun().Format(time.RFC3339),
		},
	})
}

// runNow 后台执行一轮，不等待结果；已有一轮在执行（定时或手动）时返回 409
func (s *Server) runNow(c *gin.Context) {
	done, ok := s.trigger.TryRunOnce(context.Background())
	if !ok {
		c.JSON(http.StatusConflict, gin.H{
			"code":    "conflict",
			"message": "a job run is already in progress",
		})
		return
	}

	go func() {
		s.logger.Info("manual run finished", zap.String("status", <-done))
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"code":    "accepted",
		"message": "job run started",
	})
}
