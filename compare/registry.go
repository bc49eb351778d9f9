package compare

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/buger/jsonparser"
	"github.com/pkg/errors"

	"github.com/jfrog/workspace-packager/utils"
)

// RegistryClient reads package metadata from an npm compatible registry.
type RegistryClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewRegistryClient(baseURL string, httpClient *http.Client) *RegistryClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &RegistryClient{baseURL: strings.TrimSuffix(baseURL, "/"), httpClient: httpClient}
}

// TarballURL returns the 'dist.tarball' of a published version.
func (rc *RegistryClient) TarballURL(ctx context.Context, packageName, version string) (string, error) {
	metadataURL := rc.baseURL + "/" + escapePackageName(packageName) + "/" + version
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, metadataURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := rc.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode == http.StatusNotFound {
		return "", errors.Errorf("%s@%s was not found in %s", packageName, version, rc.baseURL)
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("failed fetching %s. status code: %s", metadataURL, resp.Status)
	}
	metadata, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	tarball, err := jsonparser.GetString(metadata, "dist", "tarball")
	if err != nil {
		return "", errors.Wrapf(err, "no tarball in the metadata of %s@%s", packageName, version)
	}
	return tarball, nil
}

// Download saves the tarball at downloadTo.
func (rc *RegistryClient) Download(ctx context.Context, tarballURL, downloadTo string) error {
	return utils.DownloadFile(ctx, rc.httpClient, downloadTo, tarballURL)
}

// Scoped names keep their '@' and have the '/' encoded, as the registry expects.
func escapePackageName(name string) string {
	return strings.Replace(name, "/", "%2f", 1)
}
