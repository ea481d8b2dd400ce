package channels

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	channelsFileName = "channels.yaml"
	settingsFileName = "settings.yaml"
)

// Manager loads and updates the configuration directory. Safe for concurrent use.
type Manager struct {
	dir string

	mu       sync.Mutex
	channels channelsFile
	settings Settings
	raw      map[string]any // settings.yaml as a generic document
}

// Open loads dir, writing default channels.yaml and settings.yaml first
// when they do not exist.
func Open(dir string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("config: mkdir %s: %w", dir, err)
	}
	m := &Manager{dir: dir}
	if err := ensureFile(m.channelsPath(), defaultChannels()); err != nil {
		return nil, err
	}
	if err := ensureFile(m.settingsPath(), defaultSettings()); err != nil {
		return nil, err
	}
	if err := m.Reload(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) channelsPath() string { return filepath.Join(m.dir, channelsFileName) }
func (m *Manager) settingsPath() string { return filepath.Join(m.dir, settingsFileName) }

func ensureFile(path string, v any) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := saveYAML(path, v); err != nil {
		return err
	}
	slog.Info("created default configuration", slog.String("path", path))
	return nil
}

func saveYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("config: encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

func loadYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// Reload re-reads both files. Settings missing from settings.yaml keep
// their defaults.
func (m *Manager) Reload() error {
	var cf channelsFile
	if err := loadYAML(m.channelsPath(), &cf); err != nil {
		return err
	}
	if cf.Channels == nil {
		cf.Channels = map[string]*Channel{}
	}
	for h, c := range cf.Channels {
		if c == nil {
			c = newChannel(h, h, "general", PriorityMedium, true)
			cf.Channels[h] = c
		}
		c.Handle = h
	}

	s := defaultSettings()
	if err := loadYAML(m.settingsPath(), &s); err != nil {
		return err
	}
	raw := map[string]any{}
	if err := loadYAML(m.settingsPath(), &raw); err != nil {
		return err
	}

	m.mu.Lock()
	m.channels, m.settings, m.raw = cf, s, raw
	m.mu.Unlock()
	return nil
}

// Dir returns the configuration directory.
func (m *Manager) Dir() string { return m.dir }

// Defaults returns the run defaults from channels.yaml.
func (m *Manager) Defaults() Defaults {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.channels.Defaults
}

// Settings returns the typed settings.
func (m *Manager) Settings() Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

// Setting looks up a dotted path such as "processing.chunk_size" in
// settings.yaml as written on disk.
func (m *Manager) Setting(path string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return lookup(m.raw, path)
}

// Get returns the configured channel for handle (with or without "@").
func (m *Manager) Get(handle string) (Channel, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.channels.Channels[normalize(handle)]
	if !ok {
		return Channel{}, false
	}
	return *c, true
}

// All returns every configured channel sorted by priority, then handle.
func (m *Manager) All() []Channel {
	return m.filter(func(Channel) bool { return true })
}

// Enabled returns the enabled channels sorted by priority, then handle.
func (m *Manager) Enabled() []Channel {
	return m.filter(func(c Channel) bool { return c.Enabled })
}

// ByCategory returns the enabled channels of category.
func (m *Manager) ByCategory(category string) []Channel {
	return m.filter(func(c Channel) bool { return c.Enabled && strings.EqualFold(c.Category, category) })
}

// ByPriority returns the enabled channels of priority.
func (m *Manager) ByPriority(priority string) []Channel {
	return m.filter(func(c Channel) bool { return c.Enabled && strings.EqualFold(c.Priority, priority) })
}

func (m *Manager) filter(keep func(Channel) bool) []Channel {
	m.mu.Lock()
	var out []Channel
	for _, c := range m.channels.Channels {
		if keep(*c) {
			out = append(out, *c)
		}
	}
	m.mu.Unlock()
	slices.SortFunc(out, compareChannels)
	return out
}

// Add configures a new channel. Empty category and priority default to
// "general" and "medium".
func (m *Manager) Add(handle, displayName, category, priority string, enabled bool) error {
	h := normalize(handle)
	if h == "" {
		return fmt.Errorf("add channel: empty handle")
	}
	if category == "" {
		category = "general"
	}
	if priority == "" {
		priority = PriorityMedium
	}
	if err := validPriority(priority); err != nil {
		return fmt.Errorf("add channel %s: %w", h, err)
	}
	if displayName == "" {
		displayName = h
	}
	return m.update(func(cf *channelsFile) error {
		if _, ok := cf.Channels[h]; ok {
			return fmt.Errorf("add channel %s: %w", h, ErrChannelExists)
		}
		c := newChannel(h, displayName, category, priority, enabled)
		c.Handle = h
		cf.Channels[h] = c
		return nil
	})
}

// Remove deletes a channel from the list.
func (m *Manager) Remove(handle string) error {
	h := normalize(handle)
	return m.update(func(cf *channelsFile) error {
		if _, ok := cf.Channels[h]; !ok {
			return fmt.Errorf("remove channel %s: %w", h, ErrUnknownChannel)
		}
		delete(cf.Channels, h)
		return nil
	})
}

// SetEnabled turns a channel on or off.
func (m *Manager) SetEnabled(handle string, enabled bool) error {
	h := normalize(handle)
	return m.update(func(cf *channelsFile) error {
		c, ok := cf.Channels[h]
		if !ok {
			return fmt.Errorf("set enabled %s: %w", h, ErrUnknownChannel)
		}
		c.Enabled = enabled
		return nil
	})
}

// UpdateLastProcessed stamps a channel with the time it was last checked.
func (m *Manager) UpdateLastProcessed(handle string, at time.Time) error {
	h := normalize(handle)
	return m.update(func(cf *channelsFile) error {
		c, ok := cf.Channels[h]
		if !ok {
			return fmt.Errorf("update last processed %s: %w", h, ErrUnknownChannel)
		}
		c.LastProcessed = at.UTC().Format(time.RFC3339)
		return nil
	})
}

// update applies fn to the channel list and saves it; on error nothing is written.
func (m *Manager) update(fn func(*channelsFile) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := m.channels.clone()
	if err := fn(&next); err != nil {
		return err
	}
	if err := saveYAML(m.channelsPath(), next); err != nil {
		return err
	}
	m.channels = next
	return nil
}

func (cf channelsFile) clone() channelsFile {
	out := channelsFile{Defaults: cf.Defaults, Channels: make(map[string]*Channel, len(cf.Channels))}
	for h, c := range cf.Channels {
		cp := *c
		out.Channels[h] = &cp
	}
	return out
}

func normalize(handle string) string {
	return strings.TrimPrefix(strings.TrimSpace(handle), "@")
}
