package session

import (
	"context"
	"fmt"
	"time"

	"urlsnap/internal/logger"
	"urlsnap/internal/tracker"
	"urlsnap/pkg/model"
)

// Session 一次下载会话：以固定节拍驱动 Tracker 轮询，直到全部 URL
// 匹配完成或超过截止时间
type Session struct {
	id      model.SessionID
	tracker *tracker.Tracker
	tick    time.Duration
	timeout time.Duration
	log     logger.Logger
}

// New 创建会话。tick 非正时回落到 1 秒，timeout 非正时回落到 300 秒。
func New(id model.SessionID, tr *tracker.Tracker, tick, timeout time.Duration, l logger.Logger) *Session {
	if tick <= 0 {
		tick = time.Second
	}
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	if l == nil {
		l = logger.NewNop()
	}
	return &Session{id: id, tracker: tr, tick: tick, timeout: timeout, log: l}
}

// ID 返回会话标识
func (s *Session) ID() model.SessionID { return s.id }

// Run 驱动轮询循环。全部 URL 匹配完成返回 nil；截止时间已到仍有未匹配
// URL 时返回包装了 model.ErrDownloadTimeout 的错误；ctx 取消时返回其错误。
func (s *Session) Run(ctx context.Context) error {
	deadline := time.Now().Add(s.timeout)
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		if s.tracker.CheckNewDownloads() {
			for u, f := range s.tracker.Mapping() {
				s.log.Info("url mapped", "session", string(s.id), "url", u, "file", f)
			}
			s.log.Info("所有下载已完成", "session", string(s.id))
			return nil
		}
		if time.Now().After(deadline) {
			st := s.tracker.Stats()
			return fmt.Errorf("%w: %d of %d urls matched", model.ErrDownloadTimeout, st.Matched, st.Requested)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
