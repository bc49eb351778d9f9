// Package cienv detects the CI environment the packager is running in.
//
// Providers register themselves from init(). Only one provider can be active at runtime, since a
// binary executes in a single CI environment. CI detection requires CI=true plus provider-specific
// environment variables.
package cienv

import "os"

const (
	// CIEnvVar is the standard environment variable set by most CI systems
	CIEnvVar = "CI"
)

// RunInfo identifies the CI run the packager is executing in.
type RunInfo struct {
	// Provider is the CI provider name (e.g., "github", "gitlab")
	Provider string
	// Repository is the repository the run belongs to, "owner/repo" or "group/subgroup/project"
	Repository string
	// RunID identifies the workflow run or pipeline
	RunID string
	// JobID identifies the job inside the run, when the provider exposes it
	JobID string
	// Workspace is the job's checkout directory
	Workspace string
}

// IsEmpty returns true if no run was detected
func (r RunInfo) IsEmpty() bool {
	return r.Provider == "" && r.RunID == ""
}

// CIProvider detects one CI system and describes its current run.
type CIProvider interface {
	// Name returns the unique identifier for this CI provider
	Name() string

	// IsActive returns true if currently running in this CI environment.
	IsActive() bool

	// GetRunInfo extracts the run details from the CI environment variables
	GetRunInfo() RunInfo
}

// Registration happens in init() (sequential), and the slice is read-only after that.
var providers []CIProvider

// RegisterProvider adds a CI provider to the registry.
// Must be called from init() functions only.
func RegisterProvider(p CIProvider) {
	providers = append(providers, p)
}

// GetActiveProvider returns the active CI provider, or nil if not running in any
// supported CI environment.
func GetActiveProvider() CIProvider {
	if os.Getenv(CIEnvVar) != "true" {
		return nil
	}
	for _, p := range providers {
		if p.IsActive() {
			return p
		}
	}
	return nil
}

// GetRunInfo returns the run details of the active CI provider.
// Returns an empty RunInfo if no CI environment is detected.
func GetRunInfo() RunInfo {
	provider := GetActiveProvider()
	if provider == nil {
		return RunInfo{}
	}
	return provider.GetRunInfo()
}

// IsRunningInCI returns true if running in any supported CI environment.
func IsRunningInCI() bool {
	return GetActiveProvider() != nil
}

// GetRegisteredProviders returns all registered providers.
func GetRegisteredProviders() []CIProvider {
	return providers
}

// ClearProviders removes all registered providers.
// Intended for testing purposes only.
func ClearProviders() {
	providers = nil
}
