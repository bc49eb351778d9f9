package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/buger/jsonparser"
	"github.com/golang-jwt/jwt/v4"
	"github.com/mholt/archiver/v3"
	"github.com/pkg/errors"

	"github.com/jfrog/workspace-packager/utils"
	"github.com/jfrog/workspace-packager/utils/cienv"
)

const (
	// Set by GitHub Actions for steps that upload artifacts.
	RuntimeTokenEnv = "ACTIONS_RUNTIME_TOKEN"
	ResultsURLEnv   = "ACTIONS_RESULTS_URL"

	artifactServicePath = "twirp/github.actions.results.api.v1.ArtifactService/"
	artifactVersion     = 4
	resultsScopePrefix  = "Actions.Results:"
)

// ArtifactUploader bundles the archives as an artifact of the current CI job.
type ArtifactUploader struct {
	httpClient *http.Client
	log        utils.Log
}

func NewArtifactUploader(httpClient *http.Client, log utils.Log) *ArtifactUploader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &ArtifactUploader{httpClient: httpClient, log: log}
}

// Upload stores files under the artifact name. Outside CI it only warns, so local runs need no CI credentials.
func (au *ArtifactUploader) Upload(ctx context.Context, name string, files []string) error {
	provider := cienv.GetActiveProvider()
	if provider == nil {
		au.log.Warn("Not running in a supported CI environment, skipping the upload of the '" + name + "' artifact")
		return nil
	}
	switch provider.Name() {
	case cienv.GitHubProviderName:
		return au.uploadToGitHub(ctx, name, files)
	case cienv.GitLabProviderName:
		return au.stageForGitLab(provider.GetRunInfo().Workspace, name, files)
	}
	au.log.Warn("Artifacts aren't supported on " + provider.Name() + ", skipping the upload of '" + name + "'")
	return nil
}

// GitLab collects artifacts from the paths declared by the job, relative to the project directory.
func (au *ArtifactUploader) stageForGitLab(projectDir, name string, files []string) error {
	if projectDir == "" {
		return errors.New(cienv.GitLabProjectDirEnvVar + " is not set")
	}
	artifactDir := filepath.Join(projectDir, name)
	if err := utils.CreateDirIfNotExist(artifactDir); err != nil {
		return err
	}
	for _, file := range files {
		if err := utils.CopyFile(artifactDir, file); err != nil {
			return err
		}
	}
	au.log.Info("Staged", len(files), "files in", artifactDir+". Add '"+name+"/' to the job's artifacts:paths to keep them")
	return nil
}

type artifactRequest struct {
	WorkflowRunBackendID    string `json:"workflowRunBackendId"`
	WorkflowJobRunBackendID string `json:"workflowJobRunBackendId"`
	Name                    string `json:"name"`
	Version                 int    `json:"version,omitempty"`
	Size                    string `json:"size,omitempty"`
	Hash                    string `json:"hash,omitempty"`
}

// uploadToGitHub follows the artifacts (v4) protocol: create the artifact, upload a zip to the signed URL, then finalize.
func (au *ArtifactUploader) uploadToGitHub(ctx context.Context, name string, files []string) (err error) {
	token, resultsURL := os.Getenv(RuntimeTokenEnv), os.Getenv(ResultsURLEnv)
	if token == "" || resultsURL == "" {
		return errors.Errorf("%s and %s must be exposed to this step to upload artifacts", RuntimeTokenEnv, ResultsURLEnv)
	}
	runID, jobID, err := backendIDs(token)
	if err != nil {
		return err
	}
	tempDir, err := utils.CreateTempDir()
	if err != nil {
		return err
	}
	defer func() {
		if removeErr := utils.RemoveTempDir(tempDir); err == nil {
			err = removeErr
		}
	}()
	zipPath := filepath.Join(tempDir, name+".zip")
	if err = archiver.NewZip().Archive(files, zipPath); err != nil {
		return errors.Wrap(err, "failed zipping the archives")
	}
	details, err := utils.GetFileDetails(zipPath)
	if err != nil {
		return err
	}

	service := strings.TrimSuffix(resultsURL, "/") + "/" + artifactServicePath
	created, err := au.callArtifactService(ctx, service+"CreateArtifact", token, artifactRequest{
		WorkflowRunBackendID:    runID,
		WorkflowJobRunBackendID: jobID,
		Name:                    name,
		Version:                 artifactVersion,
	})
	if err != nil {
		return err
	}
	uploadURL, err := jsonparser.GetString(created, "signedUploadUrl")
	if err != nil {
		return errors.Wrap(err, "the artifact service didn't return an upload URL")
	}
	au.log.Info("Uploading the '"+name+"' artifact,", details.Size, "bytes")
	if err = au.uploadBlob(ctx, uploadURL, zipPath, details.Size); err != nil {
		return err
	}
	finalized, err := au.callArtifactService(ctx, service+"FinalizeArtifact", token, artifactRequest{
		WorkflowRunBackendID:    runID,
		WorkflowJobRunBackendID: jobID,
		Name:                    name,
		Size:                    strconv.FormatInt(details.Size, 10),
		Hash:                    "sha256:" + details.Sha256,
	})
	if err != nil {
		return err
	}
	artifactID, _ := jsonparser.GetString(finalized, "artifactId")
	au.log.Info("Uploaded the '" + name + "' artifact (ID " + artifactID + ")")
	return nil
}

// backendIDs reads the workflow run and job IDs from the 'Actions.Results:<run>:<job>' scope of the runtime token.
// The token is only parsed; the results service verifies it.
func backendIDs(token string) (runID, jobID string, err error) {
	claims := jwt.MapClaims{}
	if _, _, err = jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", "", errors.Wrap(err, "failed parsing "+RuntimeTokenEnv)
	}
	scopes, _ := claims["scp"].(string)
	for _, scope := range strings.Fields(scopes) {
		if !strings.HasPrefix(scope, resultsScopePrefix) {
			continue
		}
		parts := strings.Split(strings.TrimPrefix(scope, resultsScopePrefix), ":")
		if len(parts) == 2 && parts[0] != "" && parts[1] != "" {
			return parts[0], parts[1], nil
		}
	}
	return "", "", errors.Errorf("%s has no '%s' scope", RuntimeTokenEnv, resultsScopePrefix)
}

func (au *ArtifactUploader) callArtifactService(ctx context.Context, url, token string, body artifactRequest) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	respBody, err := au.do(req)
	if err != nil {
		return nil, err
	}
	if ok, err := jsonparser.GetBoolean(respBody, "ok"); err == nil && !ok {
		return nil, errors.Errorf("%s was rejected: %s", url, string(respBody))
	}
	return respBody, nil
}

func (au *ArtifactUploader) uploadBlob(ctx context.Context, url, path string, size int64) (err error) {
	file, err := os.Open(path)
	if err != nil {
		return
	}
	defer func() {
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
	}()
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, file)
	if err != nil {
		return
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", "application/zip")
	req.Header.Set("x-ms-blob-type", "BlockBlob")
	_, err = au.do(req)
	return
}

func (au *ArtifactUploader) do(req *http.Request) ([]byte, error) {
	resp, err := au.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// The query of a signed URL carries its signature.
		target := req.URL.Scheme + "://" + req.URL.Host + req.URL.Path
		return nil, fmt.Errorf("%s %s failed. status code: %s: %s", req.Method, target, resp.Status, strings.TrimSpace(string(body)))
	}
	return body, nil
}
