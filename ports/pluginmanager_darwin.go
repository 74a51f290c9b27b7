//go:build darwin && cgo

package ports

import (
	"context"
	"fmt"
	"sync"

	"github.com/shaban/trackgraph/document"
	"github.com/shaban/trackgraph/plugins"
)

// DarwinPluginManager backs PluginManager with shaban/macaudio/plugins'
// Audio Unit introspection. It caches the full plugin catalogue on first
// use, matching the teacher's session.Session plugin-cache pattern
// (session.go's QuickPlugins/Warm), trimmed to the lookup-by-id surface
// the core needs.
type DarwinPluginManager struct {
	mu      sync.Mutex
	catalog map[string]plugins.Plugin
	loaded  bool
}

func NewDarwinPluginManager() *DarwinPluginManager {
	return &DarwinPluginManager{catalog: make(map[string]plugins.Plugin)}
}

func (m *DarwinPluginManager) ensureCatalog() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loaded {
		return nil
	}
	list, err := plugins.GetPlugins()
	if err != nil {
		return fmt.Errorf("ports: enumerate plugins: %w", err)
	}
	for _, p := range list {
		m.catalog[p.Name] = p
	}
	m.loaded = true
	return nil
}

func (m *DarwinPluginManager) Create(ctx context.Context, desc PluginDescriptor) (*PluginInstance, error) {
	if err := m.ensureCatalog(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	plugin, ok := m.catalog[desc.PluginID]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("ports: %w: unknown plugin %q", ErrPluginInstantiation, desc.PluginID)
	}
	return &PluginInstance{
		Handle:            plugin.Name,
		NumInputChannels:  2,
		NumOutputChannels: 2,
		Parameters:        toDocumentParameters(plugin.Parameters),
		State:             desc.CopiedState,
	}, nil
}

func (m *DarwinPluginManager) CreateCopy(ctx context.Context, state string) (*PluginInstance, error) {
	return &PluginInstance{State: state}, nil
}

func (m *DarwinPluginManager) Destroy(ctx context.Context, handle any) error {
	return nil
}

func toDocumentParameters(params []plugins.Parameter) []document.Parameter {
	out := make([]document.Parameter, 0, len(params))
	for _, p := range params {
		out = append(out, document.Parameter{
			ID:           p.Identifier,
			DisplayName:  p.DisplayName,
			Value:        p.CurrentValue,
			Default:      p.DefaultValue,
			Min:          p.MinValue,
			Max:          p.MaxValue,
			ValueStrings: p.IndexedValues,
		})
	}
	return out
}
