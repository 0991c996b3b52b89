package borrow

import (
	"context"
	"time"

	"equipment-lending-system/config"

	"github.com/robfig/cron/v3"
)

var sweeper *cron.Cron

// startOverdueSweep 配置了 Borrow.OverdueSweep 时定期把超期的借出记录标记为 OVERDUE，
// 未配置时逾期只在查询时计算
func startOverdueSweep(s *Service) {
	spec := config.Get().Borrow.OverdueSweep
	if spec == "" {
		return
	}
	c := cron.New()
	_, err := c.AddFunc(spec, func() { sweepOnce(s) })
	if err != nil {
		log.Error("逾期标记任务配置错误", "spec", spec, "error", err)
		return
	}
	c.Start()
	sweeper = c
	log.Info("逾期标记任务已启动", "spec", spec)
}

func sweepOnce(s *Service) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	n, err := s.MarkOverdue(ctx)
	if err != nil {
		log.Error("标记逾期借用记录失败", "error", err)
		return
	}
	if n > 0 {
		log.Info("已标记逾期借用记录", "count", n)
	}
}

// StopOverdueSweep 等待正在执行的任务结束
func StopOverdueSweep() {
	if sweeper != nil {
		<-sweeper.Stop().Done()
	}
}
