package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/LJTian/JobAlert/internal/collector"
	"github.com/LJTian/JobAlert/internal/digest"
	"github.com/LJTian/JobAlert/internal/metrics"
	"github.com/LJTian/JobAlert/internal/notifier"
	"github.com/LJTian/JobAlert/internal/storage"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Harvester interface {
	Harvest(ctx context.Context, catalog collector.Catalog) collector.Result
}

type Sender interface {
	Send(ctx context.Context, msg digest.Message) error
}

// Journal 记录每次触发的结果，可为空
type Journal interface {
	SaveRun(ctx context.Context, run *storage.Run) error
}

type Options struct {
	DailyAt      string
	PollInterval time.Duration
	Clock        Clock

	Catalog   collector.Catalog
	Harvester Harvester
	Sender    Sender
	Journal   Journal

	From string
	To   string

	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

type Scheduler struct {
	clock   Clock
	poll    time.Duration
	catalog collector.Catalog

	harvester Harvester
	sender    Sender
	journal   Journal

	from string
	to   string

	logger  *zap.Logger
	metrics *metrics.Metrics

	// stateMu 保护 daily；runMu 保证同一时刻只有一轮采集（定时与手动触发不重叠）
	stateMu sync.Mutex
	daily   *Daily
	runMu   sync.Mutex
}

func New(opts Options) (*Scheduler, error) {
	if opts.Harvester == nil || opts.Sender == nil {
		return nil, errors.New("scheduler: harvester and sender are required")
	}
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	daily, err := NewDaily(opts.DailyAt, opts.Clock.Now())
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		clock:     opts.Clock,
		poll:      opts.PollInterval,
		catalog:   opts.Catalog,
		harvester: opts.Harvester,
		sender:    opts.Sender,
		journal:   opts.Journal,
		from:      opts.From,
		to:        opts.To,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		daily:     daily,
	}, nil
}

// Run 阻塞运行：先检查一次，之后每个轮询间隔检查一次，直到 ctx 结束
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("job alert automation running",
		zap.String("daily_at", s.DailyAt()),
		zap.Time("next_run", s.NextRun()),
		zap.Int("sources", len(s.catalog)),
	)

	for {
		s.Tick(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.clock.After(s.poll):
		}
	}
}

// Tick 到点则执行一轮并返回 true
func (s *Scheduler) Tick(ctx context.Context) bool {
	now := s.clock.Now()

	s.stateMu.Lock()
	due := s.daily.Due(now)
	if due {
		s.daily.Advance(now)
	}
	s.stateMu.Unlock()

	if !due {
		return false
	}
	s.RunOnce(ctx)
	return true
}

func (s *Scheduler) DailyAt() string {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.daily.At()
}

func (s *Scheduler) NextRun() time.Time {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.daily.Next()
}

// RunOnce 对外暴露的单次执行入口：采集、拼邮件、发送。任何错误都只记录日志。
// 已有一轮在执行时排队等待
func (s *Scheduler) RunOnce(ctx context.Context) string {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.run(ctx)
}

// TryRunOnce 不排队：已有一轮在执行时立即返回 false；
// 否则在后台执行一轮，结束后把状态写入返回的 channel
func (s *Scheduler) TryRunOnce(ctx context.Context) (<-chan string, bool) {
	if !s.runMu.TryLock() {
		return nil, false
	}

	done := make(chan string, 1)
	go func() {
		status := s.run(ctx)
		s.runMu.Unlock()
		done <- status
	}()
	return done, true
}

// run 调用方必须持有 runMu
func (s *Scheduler) run(ctx context.Context) (status string) {
	firedAt := s.clock.Now()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("job run panicked", zap.Any("panic", r))
			status = storage.RunStatusFailed
			s.record(ctx, storage.NewRun(firedAt, status, nil, 0, 0, s.to, fmt.Errorf("panic: %v", r)))
		}
	}()

	s.logger.Info("running job search", zap.String("at", firedAt.Format("15:04:05")))
	result := s.harvester.Harvest(ctx, s.catalog)
	lines := result.Lines()
	links, errs := result.Counts()

	if len(result) == 0 {
		s.logger.Info("no job links found")
		status = storage.RunStatusSkipped
		s.record(ctx, storage.NewRun(firedAt, status, lines, links, errs, s.to, nil))
		return status
	}

	s.logger.Info("preparing to send email", zap.Int("links", links), zap.Int("errors", errs))
	msg := digest.Compose(lines, s.clock.Now(), s.from, s.to)

	err := s.sender.Send(ctx, msg)
	switch {
	case err == nil:
		s.logger.Info("email sent successfully", zap.String("recipient", s.to))
		status = storage.RunStatusSent
	case errors.Is(err, notifier.ErrAuthentication):
		s.logger.Error("SMTP authentication error: check your app password", zap.Error(err))
		status = storage.RunStatusFailed
	default:
		s.logger.Error("failed to send email", zap.Error(err))
		status = storage.RunStatusFailed
	}

	s.record(ctx, storage.NewRun(firedAt, status, lines, links, errs, s.to, err))
	return status
}

func (s *Scheduler) record(ctx context.Context, run *storage.Run) {
	s.metrics.ObserveRun(run.Status, run.FiredAt)
	if s.journal == nil {
		return
	}
	if err := s.journal.SaveRun(ctx, run); err != nil {
		s.logger.Warn("save run failed", zap.Error(err))
	}
}
