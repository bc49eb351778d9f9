package publish

import (
	"context"
	"net/http"
	"os"

	"github.com/google/go-github/v66/github"
	"github.com/pkg/errors"
)

const assetsPerPage = 100

// GitHubReleaseClient implements ReleaseClient over the GitHub REST API.
type GitHubReleaseClient struct {
	client *github.Client
}

// NewGitHubReleaseClient authenticates with token. An empty apiURL targets github.com,
// otherwise it's the base URL of a GitHub Enterprise Server.
func NewGitHubReleaseClient(token, apiURL string) (*GitHubReleaseClient, error) {
	client := github.NewClient(nil).WithAuthToken(token)
	if apiURL != "" {
		var err error
		if client, err = client.WithEnterpriseURLs(apiURL, apiURL); err != nil {
			return nil, errors.Wrapf(err, "invalid GitHub API URL '%s'", apiURL)
		}
	}
	return &GitHubReleaseClient{client: client}, nil
}

func (gc *GitHubReleaseClient) GetReleaseByTag(ctx context.Context, owner, repo, tag string) (int64, error) {
	release, resp, err := gc.client.Repositories.GetReleaseByTag(ctx, owner, repo, tag)
	if err != nil {
		if isNotFound(resp, err) {
			return 0, errors.Wrapf(ErrReleaseNotFound, "tag '%s'", tag)
		}
		return 0, err
	}
	return release.GetID(), nil
}

func (gc *GitHubReleaseClient) CreateRelease(ctx context.Context, owner, repo, tag string) (int64, error) {
	release, _, err := gc.client.Repositories.CreateRelease(ctx, owner, repo, &github.RepositoryRelease{
		TagName:    github.String(tag),
		Name:       github.String(tag),
		Draft:      github.Bool(false),
		Prerelease: github.Bool(false),
	})
	if err != nil {
		return 0, err
	}
	return release.GetID(), nil
}

func (gc *GitHubReleaseClient) ListAssets(ctx context.Context, owner, repo string, releaseID int64) ([]ReleaseAsset, error) {
	var assets []ReleaseAsset
	opts := &github.ListOptions{PerPage: assetsPerPage}
	for {
		page, resp, err := gc.client.Repositories.ListReleaseAssets(ctx, owner, repo, releaseID, opts)
		if err != nil {
			return nil, err
		}
		for _, asset := range page {
			assets = append(assets, ReleaseAsset{ID: asset.GetID(), Name: asset.GetName()})
		}
		if resp.NextPage == 0 {
			return assets, nil
		}
		opts.Page = resp.NextPage
	}
}

func (gc *GitHubReleaseClient) DeleteAsset(ctx context.Context, owner, repo string, assetID int64) error {
	_, err := gc.client.Repositories.DeleteReleaseAsset(ctx, owner, repo, assetID)
	return err
}

// UploadAsset relies on go-github to set the content length from the file's size.
func (gc *GitHubReleaseClient) UploadAsset(ctx context.Context, owner, repo string, releaseID int64, name, mediaType string, file *os.File) error {
	_, _, err := gc.client.Repositories.UploadReleaseAsset(ctx, owner, repo, releaseID, &github.UploadOptions{Name: name, MediaType: mediaType}, file)
	return err
}

func isNotFound(resp *github.Response, err error) bool {
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return true
	}
	var errResp *github.ErrorResponse
	return errors.As(err, &errResp) && errResp.Response != nil && errResp.Response.StatusCode == http.StatusNotFound
}
