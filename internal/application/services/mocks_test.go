package services

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	apphttp "switcherforgames.com/cli/internal/application/http"
	plugindomain "switcherforgames.com/cli/internal/core/domain/plugin"
	pluginports "switcherforgames.com/cli/internal/core/ports/plugin"
	"switcherforgames.com/cli/internal/infrastructure/config"
)

// Mock implementations

type MockPlugin struct {
	mock.Mock
	desc *plugindomain.Descriptor
}

func newMockPlugin(uid, game string, features ...plugindomain.Feature) *MockPlugin {
	return &MockPlugin{desc: &plugindomain.Descriptor{
		UID:      uid,
		Game:     game,
		Author:   "sam",
		API:      plugindomain.APILevel,
		Features: plugindomain.NewFeatureSet(features...),
	}}
}

func (m *MockPlugin) Descriptor() *plugindomain.Descriptor {
	return m.desc
}

func (m *MockPlugin) Identify(gamePath string) bool {
	args := m.Called(gamePath)
	return args.Bool(0)
}

func (m *MockPlugin) Verify(gamePath string) error {
	args := m.Called(gamePath)
	return args.Error(0)
}

func (m *MockPlugin) Executable(gamePath string) (string, error) {
	args := m.Called(gamePath)
	return args.String(0), args.Error(1)
}

func (m *MockPlugin) Fragments(feature plugindomain.Feature) ([]string, error) {
	args := m.Called(feature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockLoader struct {
	mock.Mock
}

func (m *MockLoader) LoadDir(dir string) (pluginports.Plugin, error) {
	args := m.Called(dir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pluginports.Plugin), args.Error(1)
}

type MockInstaller struct {
	mock.Mock
}

func (m *MockInstaller) InstallFromSource(ctx context.Context, src string) (*plugindomain.Descriptor, error) {
	args := m.Called(ctx, src)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*plugindomain.Descriptor), args.Error(1)
}

func (m *MockInstaller) InstallYAML(ctx context.Context, data []byte) (*plugindomain.Descriptor, error) {
	args := m.Called(ctx, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*plugindomain.Descriptor), args.Error(1)
}

func (m *MockInstaller) Uninstall(ctx context.Context, uid string) error {
	args := m.Called(ctx, uid)
	return args.Error(0)
}

type MockRegistry struct {
	mock.Mock
}

func (m *MockRegistry) Load(ctx context.Context) (map[string]plugindomain.InstallRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]plugindomain.InstallRecord), args.Error(1)
}

func (m *MockRegistry) Save(ctx context.Context, records map[string]plugindomain.InstallRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *MockRegistry) Add(ctx context.Context, record plugindomain.InstallRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRegistry) Remove(ctx context.Context, uid string) error {
	args := m.Called(ctx, uid)
	return args.Error(0)
}

type MockRepositoryResolver struct {
	mock.Mock
}

func (m *MockRepositoryResolver) Repository(ctx context.Context, id int64) (*apphttp.Repository, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apphttp.Repository), args.Error(1)
}

// Fakes

type countingLocker struct {
	mu      sync.Mutex
	locks   int
	unlocks int
	err     error
}

func (l *countingLocker) Lock(ctx context.Context) (func() error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	l.locks++
	return func() error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.unlocks++
		return nil
	}, nil
}

type memSettings struct {
	mu      sync.Mutex
	s       config.Settings
	dataDir string
	updates int
}

func newMemSettings(home string) *memSettings {
	return &memSettings{s: config.DefaultSettings(home)}
}

func (m *memSettings) Settings() (config.Settings, error) {
	s := m.Stored()
	if m.dataDir != "" {
		s.DataDir = m.dataDir
	}
	return s, nil
}

func (m *memSettings) Stored() config.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.s
	out.GamePaths = map[string]string{}
	for k, v := range m.s.GamePaths {
		out.GamePaths[k] = v
	}
	out.LibraryFolders = append([]string{}, m.s.LibraryFolders...)
	return out
}

func (m *memSettings) Update(fn func(*config.Settings) error) error {
	next := m.Stored()
	if err := fn(&next); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = next
	m.updates++
	return nil
}

type pluginList []pluginports.Plugin

func (l pluginList) Get(uid string) (pluginports.Plugin, error) {
	for _, p := range l {
		if p.Descriptor().UID == uid {
			return p, nil
		}
	}
	return nil, plugindomain.ErrPluginNotFound
}

func (l pluginList) Plugins() []pluginports.Plugin {
	return l
}
