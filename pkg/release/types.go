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

// Package release defines the GitHub release data model used by sprout and
// the rules for classifying release assets as original artifacts or
// signature files.
package release

import "strings"

// SignatureExtensions is the fixed set of filename suffixes recognized as
// detached signatures or attestations. An asset whose name ends in one of
// these is never itself signed. Note the asymmetry: all six are recognized
// on read, but sprout only ever produces ".asc".
var SignatureExtensions = []string{
	".minisig",
	".asc",
	".sig",
	".sign",
	".sigstore",
	".intoto.jsonl",
}

// producedExtension is the suffix of signatures sprout creates.
const producedExtension = ".asc"

// Release is a single GitHub release as returned by the releases API.
// Immutable once fetched within a run; never persisted between runs.
type Release struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	TagName string  `json:"tag_name"`
	Assets  []Asset `json:"assets"`
	// UploadURL is a URL template ending in "{?name,label}"; the template
	// part must be stripped before posting new assets.
	UploadURL string `json:"upload_url"`
}

// DisplayName returns the release name, falling back to the tag.
func (r *Release) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.TagName
}

// AssetNames returns the set of asset names present in the release, used
// for skip-if-already-signed checks.
func (r *Release) AssetNames() map[string]bool {
	names := make(map[string]bool, len(r.Assets))
	for _, a := range r.Assets {
		names[a.Name] = true
	}
	return names
}

// Asset is a single release asset. URL is the credentialed API endpoint
// (used for octet-stream downloads); BrowserDownloadURL is the public one.
type Asset struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	URL                string `json:"url"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Size               int64  `json:"size"`
	ContentType        string `json:"content_type"`
}

// IsSignature reports whether name ends in a recognized signature
// extension, meaning the asset is a signature file rather than a signable
// artifact.
func IsSignature(name string) bool {
	for _, ext := range SignatureExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// SignatureName returns the name of the detached signature for an asset:
// always "<name>.asc".
func SignatureName(name string) string {
	return name + producedExtension
}
