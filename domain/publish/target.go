package publish

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultBranch is the Steam branch every depot build lands on unless told otherwise
const DefaultBranch = "default"

// UploadTarget describes where a build is uploaded on Steam
type UploadTarget struct {
	AppID   int
	DepotID int
	Branch  string // Release channel, "default" when unset
	SetLive bool   // Promote the build to Branch after a successful upload
}

// NewUploadTarget creates a target on the default branch that is not set live
func NewUploadTarget(appID, depotID int) UploadTarget {
	return UploadTarget{
		AppID:   appID,
		DepotID: depotID,
		Branch:  DefaultBranch,
	}
}

// Validate checks that the target has usable identifiers
func (t UploadTarget) Validate() error {
	if t.AppID <= 0 {
		return fmt.Errorf("app id must be positive, got %d", t.AppID)
	}
	if t.DepotID <= 0 {
		return fmt.Errorf("depot id must be positive, got %d", t.DepotID)
	}
	return nil
}

// LiveBranch returns the branch to set live, or "" when the build stays unpublished
func (t UploadTarget) LiveBranch() string {
	if !t.SetLive || strings.TrimSpace(t.Branch) == "" {
		return ""
	}
	return t.Branch
}

// Registry maps build target keys (e.g. "windows") to upload targets.
// A Registry is never modified after construction.
type Registry struct {
	targets map[string]UploadTarget
}

// NormalizeKey lower-cases and trims a build target key
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// NewRegistry creates a registry from a key/target table. Keys are normalized;
// the table is copied so later changes by the caller are not observed.
func NewRegistry(targets map[string]UploadTarget) Registry {
	r := Registry{targets: make(map[string]UploadTarget, len(targets))}
	for key, target := range targets {
		if target.Branch == "" {
			target.Branch = DefaultBranch
		}
		r.targets[NormalizeKey(key)] = target
	}
	return r
}

// DefaultRegistry returns the built-in build targets
func DefaultRegistry() Registry {
	return NewRegistry(map[string]UploadTarget{
		"windows":      NewUploadTarget(1541370, 1541373),
		"windows-demo": NewUploadTarget(3810460, 3810462),
	})
}

// Lookup returns the target registered for key (case-insensitive)
func (r Registry) Lookup(key string) (UploadTarget, error) {
	normalized := NormalizeKey(key)
	target, ok := r.targets[normalized]
	if !ok {
		return UploadTarget{}, fmt.Errorf("%w: %q", ErrUnknownTarget, normalized)
	}
	return target, nil
}

// Keys returns all registered keys in sorted order
func (r Registry) Keys() []string {
	keys := make([]string, 0, len(r.targets))
	for key := range r.targets {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of registered targets
func (r Registry) Len() int {
	return len(r.targets)
}
