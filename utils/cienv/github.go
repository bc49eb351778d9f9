package cienv

import (
	"os"
)

const (
	// GitHub Actions environment variable names
	// Reference: https://docs.github.com/en/actions/learn-github-actions/environment-variables
	GitHubActionsEnvVar    = "GITHUB_ACTIONS"
	GitHubRepositoryEnvVar = "GITHUB_REPOSITORY"
	GitHubWorkflowEnvVar   = "GITHUB_WORKFLOW"
	GitHubRunIDEnvVar      = "GITHUB_RUN_ID"
	GitHubJobEnvVar        = "GITHUB_JOB"
	GitHubWorkspaceEnvVar  = "GITHUB_WORKSPACE"

	// Provider name constant
	GitHubProviderName = "github"
)

// GitHubActionsProvider implements CIProvider for GitHub Actions.
type GitHubActionsProvider struct{}

func init() {
	RegisterProvider(&GitHubActionsProvider{})
}

func (g *GitHubActionsProvider) Name() string {
	return GitHubProviderName
}

// IsActive checks for GITHUB_ACTIONS=true plus GITHUB_WORKFLOW and GITHUB_RUN_ID,
// which are always set in GitHub Actions.
func (g *GitHubActionsProvider) IsActive() bool {
	if os.Getenv(GitHubActionsEnvVar) != "true" {
		return false
	}
	return os.Getenv(GitHubWorkflowEnvVar) != "" && os.Getenv(GitHubRunIDEnvVar) != ""
}

func (g *GitHubActionsProvider) GetRunInfo() RunInfo {
	return RunInfo{
		Provider:   GitHubProviderName,
		Repository: os.Getenv(GitHubRepositoryEnvVar),
		RunID:      os.Getenv(GitHubRunIDEnvVar),
		JobID:      os.Getenv(GitHubJobEnvVar),
		Workspace:  os.Getenv(GitHubWorkspaceEnvVar),
	}
}
