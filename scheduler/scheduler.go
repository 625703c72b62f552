// Package scheduler 按 cron 表达式定时重新运行分析，例如每个交易日收盘后
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/rodrigo-brito/signalbot/model"
	"github.com/rodrigo-brito/signalbot/tools/log"
)

// parser 支持秒字段和 @daily、@every 1h 这类描述符
var parser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Job 是一次完整的分析任务
type Job func(ctx context.Context) error

type Scheduler struct {
	mu   sync.Mutex
	cron *cron.Cron
	ctx  context.Context
	job  Job
	spec string
	runs int
}

// Validate 检查 cron 表达式，格式为 "秒 分 时 日 月 周"
func Validate(spec string) error {
	if _, err := parser.Parse(spec); err != nil {
		return fmt.Errorf("%w: schedule %q: %s", model.ErrInvalidParameter, spec, err)
	}
	return nil
}

// New 创建定时任务，上一次任务还没结束时跳过本次触发
func New(ctx context.Context, spec string, job Job) (*Scheduler, error) {
	if job == nil {
		return nil, fmt.Errorf("%w: missing job", model.ErrInvalidParameter)
	}
	if err := Validate(spec); err != nil {
		return nil, err
	}

	s := &Scheduler{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		ctx:  ctx,
		job:  job,
		spec: spec,
	}

	if _, err := s.cron.AddFunc(spec, func() {
		_ = s.RunNow()
	}); err != nil {
		return nil, fmt.Errorf("register job: %w", err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.WithField("schedule", s.spec).Info("scheduler started")
}

// Stop 停止调度并等待正在运行的任务结束
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info("scheduler stopped")
}

// RunNow 立即执行一次任务，可以在启动时手动触发
func (s *Scheduler) RunNow() error {
	if err := s.ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.runs++
	run := s.runs
	s.mu.Unlock()

	log.WithField("run", run).Info("running scheduled analysis")
	if err := s.job(s.ctx); err != nil {
		log.WithError(err).WithField("run", run).Error("scheduled analysis failed")
		return err
	}
	return nil
}

// Runs 返回已执行的次数
func (s *Scheduler) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}
