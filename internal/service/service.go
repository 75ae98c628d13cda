package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"urlsnap/internal/browser"
	"urlsnap/internal/config"
	"urlsnap/internal/ctxkeys"
	"urlsnap/internal/extension"
	"urlsnap/internal/logger"
	"urlsnap/internal/match"
	"urlsnap/internal/session"
	"urlsnap/internal/storage"
	"urlsnap/internal/tracker"
	"urlsnap/pkg/model"
)

// readySelector 扩展页面就绪标志元素
const readySelector = "#URLLabel"

// Service 抓取工作流的编排层：安装扩展、启动浏览器、触发批量下载、
// 驱动会话轮询并产出最终报告
type Service struct {
	cfg      *config.Config
	log      logger.Logger
	store    *storage.Store // 可为 nil（未配置 DSN 时不持久化）
	sessions *session.Manager

	mu sync.Mutex // 同一进程同时只运行一次会话
}

// New 创建服务实例
func New(cfg *config.Config, store *storage.Store, l logger.Logger) *Service {
	if l == nil {
		l = logger.NewNop()
	}
	return &Service{
		cfg:      cfg,
		log:      l,
		store:    store,
		sessions: session.NewManager(l),
	}
}

// Fetch 执行一次完整的批量抓取会话并返回每个已匹配 URL 的快照结果
func (s *Service) Fetch(ctx context.Context, urls []string) (model.Report, error) {
	if len(urls) == 0 {
		return nil, errors.New("no urls provided")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := model.SessionID(uuid.NewString())
	ctx = context.WithValue(ctx, ctxkeys.TraceIDKey{}, string(id))
	s.log.Info("开始抓取会话", "session", string(id), "urls", len(urls))

	downloadDir, extensionDir, err := s.absDirs()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(downloadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create download dir: %w", err)
	}
	if err := os.MkdirAll(extensionDir, 0o755); err != nil {
		return nil, fmt.Errorf("create extension dir: %w", err)
	}

	if err := extension.Unpack(s.cfg.Paths.ExtensionCrx, extensionDir); err != nil {
		return nil, err
	}
	extID := extension.ID(extensionDir)
	s.log.Info("扩展已解包", "id", extID, "dir", extensionDir)

	selector := match.NewSelector(match.Config{
		MinimumScore:   s.cfg.Match.MinimumScore,
		ContentWeight:  s.cfg.Match.ContentWeight,
		FilenameWeight: s.cfg.Match.FilenameWeight,
	}, s.log)
	tr, err := tracker.New(downloadDir, urls, selector, s.log)
	if err != nil {
		return nil, fmt.Errorf("init tracker: %w", err)
	}

	b, err := browser.Launch(ctx, browser.LaunchConfig{
		ChromePath:    s.cfg.Chrome.Path,
		DebuggingPort: s.cfg.Chrome.DebuggingPort,
		Headless:      s.cfg.Chrome.Headless,
		ExtensionDir:  extensionDir,
		ExtraArgs:     s.cfg.Chrome.ExtraArgs,
	}, s.log)
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	// 无论走到哪条错误路径都要释放浏览器进程
	defer b.Close(context.Background())

	if err := s.trigger(ctx, b, extID, downloadDir, urls); err != nil {
		return nil, err
	}

	sess := s.sessions.Create(id, tr,
		time.Duration(s.cfg.Download.TickIntervalSec)*time.Second,
		time.Duration(s.cfg.Download.TimeoutSec)*time.Second,
	)
	defer s.sessions.Delete(id)

	if err := sess.Run(ctx); err != nil {
		return nil, err
	}

	report := tr.Report()
	if s.store != nil {
		if err := s.store.SaveReport(ctx, id, report); err != nil {
			s.log.Err(err, "保存会话结果失败", "session", string(id))
		}
	}
	return report, nil
}

// absDirs 将配置的目录解析为绝对路径。Chrome 按绝对加载路径推导未打包
// 扩展的 ID，若用相对路径计算，扩展页面地址将与实际加载的扩展不符。
func (s *Service) absDirs() (downloadDir, extensionDir string, err error) {
	downloadDir, err = filepath.Abs(s.cfg.Paths.DownloadDir)
	if err != nil {
		return "", "", fmt.Errorf("resolve download dir: %w", err)
	}
	extensionDir, err = filepath.Abs(s.cfg.Paths.ExtensionDir)
	if err != nil {
		return "", "", fmt.Errorf("resolve extension dir: %w", err)
	}
	return downloadDir, extensionDir, nil
}

// trigger 打开扩展页面并下发批量下载指令
func (s *Service) trigger(ctx context.Context, b *browser.Browser, extID, downloadDir string, urls []string) error {
	cl, err := browser.Attach(ctx, b.DevToolsURL(), s.log)
	if err != nil {
		return fmt.Errorf("attach browser: %w", err)
	}
	defer cl.Detach()

	pageURL := extension.PageURL(extID, extension.BatchSavePage)
	if err := cl.Navigate(ctx, pageURL); err != nil {
		return err
	}
	if err := cl.WaitVisible(ctx, readySelector, 30*time.Second); err != nil {
		return err
	}
	if err := cl.AllowDownloads(ctx, downloadDir); err != nil {
		return fmt.Errorf("set download behavior: %w", err)
	}
	// 给扩展留出注册下载监听的时间
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(2 * time.Second):
	}
	return cl.TriggerSave(ctx, urls)
}
