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

// Package github talks to the GitHub REST API: paginated release listing,
// asset downloads via the credentialed asset endpoint, and asset uploads
// against a release's upload URL template.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"

	"github.com/nightconcept/sprout/pkg/logging"
	"github.com/nightconcept/sprout/pkg/release"
)

const (
	// DefaultAPIBase is the public GitHub API endpoint.
	DefaultAPIBase = "https://api.github.com"

	// ReleasesPerPage is the page size for release listing. 30 is the
	// maximum the releases endpoint allows.
	ReleasesPerPage = 30
)

// ClientOptions configures a Client.
type ClientOptions struct {
	// BaseURL overrides the API endpoint. Defaults to DefaultAPIBase.
	// Trailing slashes are stripped.
	BaseURL string
	// Token is the personal access token used for all requests.
	Token string
	// HTTPClient overrides the token-authenticated client. Mainly for
	// tests; when set, Token is not used.
	HTTPClient *http.Client
	// Logger receives request diagnostics. Defaults to logging.Default().
	Logger logging.Logger
}

// Client is a minimal GitHub REST client covering what release signing
// needs. It is safe for sequential use; sprout never issues concurrent
// requests.
type Client struct {
	baseURL string
	httpc   *http.Client
	logger  logging.Logger
}

// NewClient builds a Client whose requests carry the token via an oauth2
// static token source.
func NewClient(ctx context.Context, opts ClientOptions) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultAPIBase
	}

	httpc := opts.HTTPClient
	if httpc == nil {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
		httpc = oauth2.NewClient(ctx, src)
	}

	return &Client{
		baseURL: base,
		httpc:   httpc,
		logger:  logging.EnsureLogger(opts.Logger),
	}
}

// ListReleases fetches up to count most-recent releases of owner/repo, in
// the order the API returns them. It pages through the listing endpoint
// until enough releases are collected, a short page signals the end, or a
// page comes back empty. Any request failure aborts the whole listing; no
// partial result is returned.
func (c *Client) ListReleases(ctx context.Context, owner, repo string, count int) ([]release.Release, error) {
	var releases []release.Release

	for page := 1; len(releases) < count; page++ {
		endpoint := fmt.Sprintf("%s/repos/%s/%s/releases?per_page=%d&page=%d",
			c.baseURL, owner, repo, ReleasesPerPage, page)
		c.logger.Debug("listing releases: %s", endpoint)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("building release list request: %w", err)
		}
		req.Header.Set("Accept", "application/vnd.github+json")

		resp, err := c.httpc.Do(req)
		if err != nil {
			return nil, fmt.Errorf("listing releases for %s/%s: %w", owner, repo, err)
		}

		pageReleases, err := decodeReleasePage(resp)
		if err != nil {
			return nil, fmt.Errorf("listing releases for %s/%s: %w", owner, repo, err)
		}

		if len(pageReleases) == 0 {
			break
		}
		releases = append(releases, pageReleases...)
		if len(pageReleases) < ReleasesPerPage {
			break
		}
	}

	if len(releases) > count {
		releases = releases[:count]
	}
	return releases, nil
}

func decodeReleasePage(resp *http.Response) ([]release.Release, error) {
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var page []release.Release
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decoding release page: %w", err)
	}
	return page, nil
}

// DownloadAsset streams the asset's bytes to destPath via its credentialed
// API endpoint, requesting the octet-stream representation. The payload is
// never held in memory whole. On error the destination may hold a partial
// file; the caller owns cleanup.
func (c *Client) DownloadAsset(ctx context.Context, asset release.Asset, destPath string) error {
	c.logger.Info("downloading asset %s", asset.Name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset.URL, nil)
	if err != nil {
		return fmt.Errorf("building download request for %s: %w", asset.Name, err)
	}
	req.Header.Set("Accept", "application/octet-stream")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", asset.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("downloading %s: status %d: %s", asset.Name, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", destPath, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("writing %s: %w", destPath, err)
	}
	c.logger.Debug("downloaded %s to %s", asset.Name, destPath)
	return nil
}

// UploadAsset posts the file at filePath as a new asset on the release
// identified by uploadURL (the template from the release object). The
// file's basename becomes the asset name. Returns the created asset
// metadata.
func (c *Client) UploadAsset(ctx context.Context, uploadURL, filePath string) (*release.Asset, error) {
	name := filepath.Base(filePath)
	endpoint := UploadEndpoint(uploadURL, name)
	c.logger.Info("uploading asset %s", name)

	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", filePath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", filePath, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, f)
	if err != nil {
		return nil, fmt.Errorf("building upload request for %s: %w", name, err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.ContentLength = info.Size()

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("upload of %s failed: %s", name, strings.TrimSpace(string(body)))
		return nil, fmt.Errorf("uploading %s: status %d", name, resp.StatusCode)
	}

	var created release.Asset
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("decoding upload response for %s: %w", name, err)
	}
	c.logger.Info("uploaded %s", name)
	return &created, nil
}

// UploadEndpoint resolves a release upload URL template into a concrete
// endpoint for the given asset name. GitHub upload URLs carry an RFC 6570
// "{?name,label}" suffix which must be stripped before use.
func UploadEndpoint(uploadURL, name string) string {
	if i := strings.Index(uploadURL, "{"); i >= 0 {
		uploadURL = uploadURL[:i]
	}
	return uploadURL + "?name=" + url.QueryEscape(name)
}
