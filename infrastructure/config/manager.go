package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"steam-publisher/domain/publish"
)

// Errors for config management
var (
	ErrTargetNotFound = errors.New("target not found")
	ErrDuplicateKey   = errors.New("key already exists")
	ErrInvalidTarget  = errors.New("invalid target")
)

// ConfigManager provides CRUD operations for config entries
type ConfigManager struct {
	config     *Config
	configPath string
}

// NewConfigManager creates a new config manager
func NewConfigManager(cfg *Config, configPath string) *ConfigManager {
	return &ConfigManager{
		config:     cfg,
		configPath: configPath,
	}
}

// Target represents a target entry
type Target struct {
	Key     string
	AppID   int
	DepotID int
	Branch  string
	SetLive bool
}

// TargetUpdate holds optional changes for UpdateTarget; nil fields are left as is
type TargetUpdate struct {
	AppID   *int
	DepotID *int
	Branch  *string
	SetLive *bool
}

func validateTarget(key string, tc TargetConfig) error {
	target := publish.UploadTarget{
		AppID:   tc.AppID,
		DepotID: tc.DepotID,
		Branch:  tc.Branch,
		SetLive: tc.SetLive,
	}
	if target.Branch == "" {
		target.Branch = publish.DefaultBranch
	}
	if err := target.Validate(); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidTarget, key, err)
	}
	return nil
}

// AddTarget adds a new build target to config
func (m *ConfigManager) AddTarget(key string, tc TargetConfig) error {
	key = publish.NormalizeKey(key)
	tc.Branch = strings.TrimSpace(tc.Branch)

	if key == "" {
		return fmt.Errorf("target key is required")
	}
	if err := validateTarget(key, tc); err != nil {
		return err
	}

	if m.config.Targets == nil {
		m.config.Targets = make(map[string]TargetConfig)
	}

	if _, exists := m.config.Targets[key]; exists {
		return fmt.Errorf("%w: target %q", ErrDuplicateKey, key)
	}

	m.config.Targets[key] = tc
	return Save(m.config, m.configPath)
}

// ListTargets returns all targets sorted by key
func (m *ConfigManager) ListTargets() []Target {
	result := make([]Target, 0, len(m.config.Targets))
	for key, tc := range m.config.Targets {
		result = append(result, toTarget(key, tc))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})
	return result
}

// GetTarget gets a target by key (case-insensitive)
func (m *ConfigManager) GetTarget(key string) (Target, error) {
	key = publish.NormalizeKey(key)
	if tc, exists := m.config.Targets[key]; exists {
		return toTarget(key, tc), nil
	}
	return Target{}, fmt.Errorf("%w: %q", ErrTargetNotFound, key)
}

// RemoveTarget removes a target by key
func (m *ConfigManager) RemoveTarget(key string) error {
	key = publish.NormalizeKey(key)
	if _, exists := m.config.Targets[key]; !exists {
		return fmt.Errorf("%w: %q", ErrTargetNotFound, key)
	}

	delete(m.config.Targets, key)
	return Save(m.config, m.configPath)
}

// UpdateTarget applies the provided changes to an existing target
func (m *ConfigManager) UpdateTarget(key string, update TargetUpdate) error {
	key = publish.NormalizeKey(key)

	tc, exists := m.config.Targets[key]
	if !exists {
		return fmt.Errorf("%w: %q", ErrTargetNotFound, key)
	}

	// Update only provided values
	if update.AppID != nil {
		tc.AppID = *update.AppID
	}
	if update.DepotID != nil {
		tc.DepotID = *update.DepotID
	}
	if update.Branch != nil {
		tc.Branch = strings.TrimSpace(*update.Branch)
	}
	if update.SetLive != nil {
		tc.SetLive = *update.SetLive
	}

	if err := validateTarget(key, tc); err != nil {
		return err
	}

	m.config.Targets[key] = tc
	return Save(m.config, m.configPath)
}

// SuggestAddTargetCommand returns the command to add a missing target
func SuggestAddTargetCommand(key string) string {
	return fmt.Sprintf("steam-publisher targets add %s --app <app-id> --depot <depot-id>", key)
}

func toTarget(key string, tc TargetConfig) Target {
	branch := tc.Branch
	if branch == "" {
		branch = publish.DefaultBranch
	}
	return Target{
		Key:     key,
		AppID:   tc.AppID,
		DepotID: tc.DepotID,
		Branch:  branch,
		SetLive: tc.SetLive,
	}
}
