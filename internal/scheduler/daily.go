package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
)

// Clock 可替换的时钟，测试中用假时钟驱动调度循环
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Daily 每天在固定的本地时间触发一次。错过的触发不补跑，多次错过也只触发一次
type Daily struct {
	at       string
	schedule cron.Schedule
	next     time.Time
}

// NewDaily at 形如 "11:00"，下一次触发时间从 now 起算
func NewDaily(at string, now time.Time) (*Daily, error) {
	hour, minute, err := parseHHMM(at)
	if err != nil {
		return nil, err
	}
	schedule, err := cron.ParseStandard(fmt.Sprintf("%d %d * * *", minute, hour))
	if err != nil {
		return nil, errors.Wrapf(err, "parse daily schedule %q", at)
	}
	return &Daily{
		at:       at,
		schedule: schedule,
		next:     schedule.Next(now),
	}, nil
}

func (d *Daily) At() string      { return d.at }
func (d *Daily) Next() time.Time { return d.next }

// Due 到点（含恰好到点）即为 true
func (d *Daily) Due(now time.Time) bool {
	return !now.Before(d.next)
}

// Advance 触发后把下一次时间推到 now 之后的第一个触发点
func (d *Daily) Advance(now time.Time) {
	d.next = d.schedule.Next(now)
}

func parseHHMM(at string) (int, int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(at), ":")
	if !ok {
		return 0, 0, errors.Errorf("invalid time of day %q, want HH:MM", at)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, errors.Errorf("invalid hour in %q", at)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, errors.Errorf("invalid minute in %q", at)
	}
	return hour, minute, nil
}
