// Copyright 2025 The Sprout Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package resign drives the retroactive signing workflow: discover recent
// releases, classify their assets, and run download → sign → upload per
// eligible asset with guaranteed cleanup. Per-asset failures are
// contained; only setup failures (key selection, release listing) abort
// the run.
package resign

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nightconcept/sprout/internal/hashing"
	"github.com/nightconcept/sprout/internal/prompt"
	"github.com/nightconcept/sprout/pkg/logging"
	"github.com/nightconcept/sprout/pkg/release"
	"github.com/nightconcept/sprout/pkg/signing"
	"github.com/nightconcept/sprout/pkg/tracing"
)

// ReleaseLister discovers the most recent releases of a repository.
type ReleaseLister interface {
	ListReleases(ctx context.Context, owner, repo string, count int) ([]release.Release, error)
}

// AssetTransferer moves asset bytes between the platform and local disk.
type AssetTransferer interface {
	DownloadAsset(ctx context.Context, asset release.Asset, destPath string) error
	UploadAsset(ctx context.Context, uploadURL, filePath string) (*release.Asset, error)
}

// Deps are the external collaborators of a run. All are required except
// Logger.
type Deps struct {
	Lister   ReleaseLister
	Transfer AssetTransferer
	Signer   signing.Signer
	Keyring  signing.Keyring
	Prompter prompt.Prompter
	Logger   logging.Logger
}

// Summary counts per-asset outcomes of a run. The original tool never
// exposed these; they exist so callers and tests can observe what a run
// actually did. The exit status still only reflects fatal errors.
type Summary struct {
	Signed  int
	Skipped int
	Failed  int
}

// Runner executes one signing run. Releases and assets are processed
// strictly sequentially; at most one temporary asset copy and one
// signature file exist at a time.
type Runner struct {
	opts Options
	deps Deps
}

// NewRunner validates options and dependencies.
func NewRunner(opts Options, deps Deps) (*Runner, error) {
	if opts.Owner == "" || opts.Repo == "" {
		return nil, fmt.Errorf("repository owner and name are required")
	}
	if deps.Lister == nil || deps.Transfer == nil || deps.Signer == nil ||
		deps.Keyring == nil || deps.Prompter == nil {
		return nil, fmt.Errorf("all run dependencies must be provided")
	}
	opts.normalize()
	deps.Logger = logging.EnsureLogger(deps.Logger)
	return &Runner{opts: opts, deps: deps}, nil
}

// Run performs the whole workflow and returns the per-asset outcome
// counts. The returned error is non-nil only for fatal, run-aborting
// conditions.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	var summary Summary
	log := r.deps.Logger

	key, err := r.selectKey(ctx)
	if err != nil {
		return summary, err
	}
	log.Info("using GPG key %s (%s) for signing", key.KeyID, key.PrimaryUserID())

	passphrase, err := r.deps.Prompter.Secret(
		fmt.Sprintf("Enter GPG passphrase for key %s (leave blank if none)", key.KeyID))
	if err != nil {
		return summary, fmt.Errorf("reading passphrase: %w", err)
	}

	log.Info("fetching last %d releases for %s/%s", r.opts.NumReleases, r.opts.Owner, r.opts.Repo)
	var releases []release.Release
	err = tracing.Run(ctx, "resign.list_releases", map[string]interface{}{
		"repo":  r.opts.Owner + "/" + r.opts.Repo,
		"count": r.opts.NumReleases,
	}, func(ctx context.Context) error {
		var listErr error
		releases, listErr = r.deps.Lister.ListReleases(ctx, r.opts.Owner, r.opts.Repo, r.opts.NumReleases)
		return listErr
	})
	if err != nil {
		return summary, fmt.Errorf("fetching releases: %w", err)
	}
	if len(releases) == 0 {
		log.Infoln("no releases found")
		return summary, nil
	}

	for i := range releases {
		if err := r.processRelease(ctx, &releases[i], key, passphrase, &summary); err != nil {
			return summary, err
		}
	}

	log.Info("run complete: %d signed, %d skipped, %d failed",
		summary.Signed, summary.Skipped, summary.Failed)
	return summary, nil
}

// selectKey resolves the signing key, enumerating the available keys when
// none qualifies so the operator can see what the keyring holds.
func (r *Runner) selectKey(ctx context.Context) (signing.SecretKey, error) {
	log := r.deps.Logger

	keys, err := r.deps.Keyring.SecretKeys(ctx)
	if err != nil {
		return signing.SecretKey{}, fmt.Errorf("listing secret keys: %w", err)
	}

	key, err := signing.SelectSigningKey(keys)
	if err != nil {
		log.Errorln("no suitable GPG secret key found for signing")
		log.Infoln("available secret keys (if any):")
		for _, k := range keys {
			log.Info("  keyid: %s, uids: %v, capabilities: %s", k.KeyID, k.UserIDs, k.Capabilities)
		}
		return signing.SecretKey{}, err
	}
	return key, nil
}

func (r *Runner) processRelease(ctx context.Context, rel *release.Release, key signing.SecretKey, passphrase string, summary *Summary) error {
	log := r.deps.Logger
	log.Info("processing release: %s (id: %d, tag: %s)", rel.DisplayName(), rel.ID, rel.TagName)

	if len(rel.Assets) == 0 {
		log.Info("no assets found for release %s", rel.DisplayName())
		return nil
	}

	existing := rel.AssetNames()
	tempDir := filepath.Join(r.tempRoot(), fmt.Sprintf("release-assets-%d", rel.ID))

	for _, asset := range rel.Assets {
		switch {
		case release.IsSignature(asset.Name):
			log.Info("skipping signature file: %s", asset.Name)
			summary.Skipped++

		case r.opts.SkipAlreadySigned && existing[release.SignatureName(asset.Name)]:
			log.Info("signature %s already exists for %s, skipping",
				release.SignatureName(asset.Name), asset.Name)
			summary.Skipped++

		default:
			if !r.opts.AutoConfirm {
				ok, err := r.deps.Prompter.Confirm(fmt.Sprintf(
					"Sign and re-upload asset %q for release %q?", asset.Name, rel.DisplayName()))
				if err != nil {
					return fmt.Errorf("reading confirmation: %w", err)
				}
				if !ok {
					log.Info("skipping asset %s by user choice", asset.Name)
					summary.Skipped++
					continue
				}
			}
			err := tracing.Run(ctx, "resign.asset", map[string]interface{}{
				"release": rel.TagName,
				"asset":   asset.Name,
			}, func(ctx context.Context) error {
				return r.processAsset(ctx, rel, asset, tempDir, key, passphrase)
			})
			if err != nil {
				log.Error("asset %s: %v", asset.Name, err)
				summary.Failed++
			} else {
				summary.Signed++
			}
		}
	}
	return nil
}

// processAsset runs download → sign → upload for one asset. Whatever the
// outcome, the scope removes the temporary files on exit.
func (r *Runner) processAsset(ctx context.Context, rel *release.Release, asset release.Asset, tempDir string, key signing.SecretKey, passphrase string) error {
	log := r.deps.Logger

	scope := newAssetScope(tempDir, log)
	defer scope.Release()

	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return fmt.Errorf("creating temp dir %s: %w", tempDir, err)
	}

	downloadPath := filepath.Join(tempDir, asset.Name)
	if err := r.deps.Transfer.DownloadAsset(ctx, asset, downloadPath); err != nil {
		scope.downloaded = downloadPath
		return fmt.Errorf("download failed: %w", err)
	}
	scope.downloaded = downloadPath

	if digest, err := hashing.FileDigest(downloadPath, r.opts.DigestAlgorithm); err == nil {
		log.Debug("%s %s of %s", r.opts.DigestAlgorithm, digest, asset.Name)
	} else {
		log.Warn("could not compute %s digest of %s: %v", r.opts.DigestAlgorithm, asset.Name, err)
	}

	sigPath, err := r.deps.Signer.Sign(ctx, downloadPath, key.KeyID, passphrase)
	if err != nil {
		return fmt.Errorf("signing failed: %w", err)
	}
	scope.signature = sigPath

	if _, err := r.deps.Transfer.UploadAsset(ctx, rel.UploadURL, sigPath); err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	return nil
}

func (r *Runner) tempRoot() string {
	if r.opts.TempRoot != "" {
		return r.opts.TempRoot
	}
	return "."
}
