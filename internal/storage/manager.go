// Package storage persists the small amount of state Nexus keeps between
// runs: a key/value memory file and a daily activity log.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Manager handles persistence under the data directory
type Manager struct {
	rootDir string
	mu      sync.RWMutex
	memory  map[string]MemoryEntry
	now     func() time.Time
}

// NewManager creates a storage manager rooted at dataDir, creating the
// directory layout if needed.
func NewManager(dataDir string) (*Manager, error) {
	m := &Manager{
		rootDir: dataDir,
		memory:  make(map[string]MemoryEntry),
		now:     time.Now,
	}

	if err := m.ensureDirectories(); err != nil {
		return nil, err
	}

	if err := m.loadMemory(); err != nil {
		return nil, err
	}

	return m, nil
}

// GetRootDir returns the data directory path
func (m *Manager) GetRootDir() string {
	return m.rootDir
}

func (m *Manager) ensureDirectories() error {
	dirs := []string{
		m.rootDir,
		filepath.Join(m.rootDir, "brain"),
		filepath.Join(m.rootDir, "logs"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

func (m *Manager) memoryPath() string {
	return filepath.Join(m.rootDir, "brain", "memory.json")
}

// loadMemory reads the memory file. A missing file is an empty store; a
// corrupt one is reported so it is not silently overwritten.
func (m *Manager) loadMemory() error {
	data, err := os.ReadFile(m.memoryPath())
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read memory: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &m.memory); err != nil {
		return fmt.Errorf("failed to parse memory %s: %w", m.memoryPath(), err)
	}
	return nil
}

// ============= Memory =============

// Get returns the stored value for key.
func (m *Manager) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.memory[key]
	if !ok {
		return "", false
	}
	return entry.Value, true
}

// Entry returns the stored value together with its last write time.
func (m *Manager) Entry(key string) (MemoryEntry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.memory[key]
	return entry, ok
}

// Set stores value under key and writes the memory file.
func (m *Manager) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.memory[key] = MemoryEntry{Value: value, Timestamp: m.now()}
	return m.saveMemory()
}

func (m *Manager) saveMemory() error {
	data, err := json.MarshalIndent(m.memory, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal memory: %w", err)
	}
	tmp := m.memoryPath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write memory: %w", err)
	}
	return os.Rename(tmp, m.memoryPath())
}

// ============= Activity Log =============

// LogActivity appends a timestamped line to today's activity log.
func (m *Manager) LogActivity(activity string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	path := filepath.Join(m.rootDir, "logs", fmt.Sprintf("activity_%s.log", now.Format("2006-01-02")))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open activity log: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "[%s] %s\n", now.Format("2006-01-02 15:04:05"), activity); err != nil {
		return fmt.Errorf("failed to write activity log: %w", err)
	}
	return nil
}
