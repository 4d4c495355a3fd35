package projectserver

import (
	"sync"

	"fontra-pak/internal/backend"
)

// ProjectManager resolves project paths on the local file system and keeps
// track of the projects the editor has opened.
type ProjectManager struct {
	mu     sync.Mutex
	opened map[string]*backend.Info
}

func NewProjectManager() *ProjectManager {
	return &ProjectManager{opened: make(map[string]*backend.Info)}
}

// Open describes the project at path. It is re-read on every call so edits
// made outside the editor are picked up.
func (m *ProjectManager) Open(path string) (*backend.Info, error) {
	info, err := backend.Describe(path)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.opened[path] = info
	m.mu.Unlock()
	return info, nil
}

// Opened reports how many distinct projects were opened.
func (m *ProjectManager) Opened() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.opened)
}
