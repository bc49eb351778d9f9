package cienv

import (
	"os"
)

const (
	// GitLab CI environment variable names
	// Reference: https://docs.gitlab.com/ee/ci/variables/predefined_variables.html
	GitLabCIEnvVar          = "GITLAB_CI"
	GitLabProjectPathEnvVar = "CI_PROJECT_PATH"
	GitLabPipelineIDEnvVar  = "CI_PIPELINE_ID"
	GitLabJobIDEnvVar       = "CI_JOB_ID"
	GitLabProjectDirEnvVar  = "CI_PROJECT_DIR"

	// Provider name constant
	GitLabProviderName = "gitlab"
)

// GitLabCIProvider implements CIProvider for GitLab CI.
type GitLabCIProvider struct{}

func init() {
	RegisterProvider(&GitLabCIProvider{})
}

func (g *GitLabCIProvider) Name() string {
	return GitLabProviderName
}

// IsActive checks for GITLAB_CI=true plus CI_PIPELINE_ID and CI_JOB_ID.
func (g *GitLabCIProvider) IsActive() bool {
	if os.Getenv(GitLabCIEnvVar) != "true" {
		return false
	}
	return os.Getenv(GitLabPipelineIDEnvVar) != "" && os.Getenv(GitLabJobIDEnvVar) != ""
}

// GetRunInfo reads the pipeline details. Artifacts in GitLab are collected from CI_PROJECT_DIR,
// so it is reported as the workspace.
func (g *GitLabCIProvider) GetRunInfo() RunInfo {
	return RunInfo{
		Provider:   GitLabProviderName,
		Repository: os.Getenv(GitLabProjectPathEnvVar),
		RunID:      os.Getenv(GitLabPipelineIDEnvVar),
		JobID:      os.Getenv(GitLabJobIDEnvVar),
		Workspace:  os.Getenv(GitLabProjectDirEnvVar),
	}
}
