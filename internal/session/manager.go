package session

import (
	"sync"
	"time"

	"urlsnap/internal/logger"
	"urlsnap/internal/tracker"
	"urlsnap/pkg/model"
)

// Manager 全局会话注册表
type Manager struct {
	mu       sync.RWMutex
	sessions map[model.SessionID]*Session
	log      logger.Logger
}

// NewManager 创建会话注册表
func NewManager(l logger.Logger) *Manager {
	if l == nil {
		l = logger.NewNop()
	}
	return &Manager{
		sessions: make(map[model.SessionID]*Session),
		log:      l,
	}
}

// Create 创建并注册新会话
func (m *Manager) Create(id model.SessionID, tr *tracker.Tracker, tick, timeout time.Duration) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := New(id, tr, tick, timeout, m.log)
	m.sessions[id] = s
	m.log.Info("创建下载会话", "sessionID", string(id))
	return s
}

// Get 获取会话
func (m *Manager) Get(id model.SessionID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Delete 销毁会话
func (m *Manager) Delete(id model.SessionID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	m.log.Info("销毁下载会话", "sessionID", string(id))
}

// List 返回所有活动会话
func (m *Manager) List() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		list = append(list, s)
	}
	return list
}
