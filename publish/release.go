package publish

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/jfrog/workspace-packager/entities"
	"github.com/jfrog/workspace-packager/utils"
)

const archiveMediaType = "application/gzip"

// ErrReleaseNotFound is the only lookup failure that leads to creating the release.
var ErrReleaseNotFound = errors.New("release not found")

type ReleaseAsset struct {
	ID   int64
	Name string
}

// ReleaseClient is the subset of the hosting project's release API used for reconciliation.
type ReleaseClient interface {
	// GetReleaseByTag returns the release ID, or ErrReleaseNotFound.
	GetReleaseByTag(ctx context.Context, owner, repo, tag string) (int64, error)
	CreateRelease(ctx context.Context, owner, repo, tag string) (int64, error)
	ListAssets(ctx context.Context, owner, repo string, releaseID int64) ([]ReleaseAsset, error)
	DeleteAsset(ctx context.Context, owner, repo string, assetID int64) error
	// UploadAsset uploads the file's bytes with an explicit content length.
	UploadAsset(ctx context.Context, owner, repo string, releaseID int64, name, mediaType string, file *os.File) error
}

type ReleasePublisher struct {
	client ReleaseClient
	log    utils.Log
}

func NewReleasePublisher(client ReleaseClient, log utils.Log) *ReleasePublisher {
	return &ReleasePublisher{client: client, log: log}
}

// Publish attaches the archives to the release of target, creating the release if it doesn't exist.
// Assets with the same file names are replaced, so publishing twice yields the same asset set.
func (rp *ReleasePublisher) Publish(ctx context.Context, target *entities.ReleaseTarget, files []string) error {
	if err := rp.resolveRelease(ctx, target); err != nil {
		return err
	}
	// The list is fetched after resolving so it reflects the release's current state.
	if err := rp.refreshAssets(ctx, target); err != nil {
		return err
	}
	for _, path := range files {
		if err := rp.replaceAsset(ctx, target, path); err != nil {
			return err
		}
	}
	rp.log.Info("Uploaded", len(files), "assets to", target.String())
	return nil
}

func (rp *ReleasePublisher) resolveRelease(ctx context.Context, target *entities.ReleaseTarget) (err error) {
	target.ID, err = rp.client.GetReleaseByTag(ctx, target.Owner, target.Repo, target.Tag)
	if err == nil {
		rp.log.Debug("Found release", target.String())
		return nil
	}
	if !errors.Is(err, ErrReleaseNotFound) {
		return errors.Wrapf(err, "failed looking up the release '%s'", target.String())
	}
	rp.log.Info("Creating release", target.String())
	target.ID, err = rp.client.CreateRelease(ctx, target.Owner, target.Repo, target.Tag)
	if err != nil {
		return errors.Wrapf(err, "failed creating the release '%s'", target.String())
	}
	return nil
}

func (rp *ReleasePublisher) refreshAssets(ctx context.Context, target *entities.ReleaseTarget) error {
	assets, err := rp.client.ListAssets(ctx, target.Owner, target.Repo, target.ID)
	if err != nil {
		return errors.Wrapf(err, "failed listing the assets of '%s'", target.String())
	}
	target.Assets = make(map[string]int64, len(assets))
	for _, asset := range assets {
		target.Assets[asset.Name] = asset.ID
	}
	return nil
}

func (rp *ReleasePublisher) replaceAsset(ctx context.Context, target *entities.ReleaseTarget, path string) (err error) {
	name := filepath.Base(path)
	if assetID, exists := target.Assets[name]; exists {
		rp.log.Info("Deleting the existing asset", name)
		if err = rp.client.DeleteAsset(ctx, target.Owner, target.Repo, assetID); err != nil {
			return errors.Wrapf(err, "failed deleting the asset '%s'", name)
		}
		delete(target.Assets, name)
	}
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
	}()
	rp.log.Info("Uploading", name)
	if err = rp.client.UploadAsset(ctx, target.Owner, target.Repo, target.ID, name, archiveMediaType, file); err != nil {
		return errors.Wrapf(err, "failed uploading '%s'", name)
	}
	return nil
}
