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

package resign

import (
	"fmt"
	"strings"

	"github.com/nightconcept/sprout/internal/hashing"
)

// MaxReleases is the hard cap on how many releases one run may process,
// matching the page size of the listing endpoint.
const MaxReleases = 30

// DefaultNumReleases is processed when no count is requested.
const DefaultNumReleases = 5

// Options configures a signing run.
type Options struct {
	// Owner and Repo identify the repository.
	Owner string
	Repo  string
	// NumReleases is how many recent releases to process. Zero means
	// DefaultNumReleases; values above MaxReleases are clamped.
	NumReleases int
	// SkipAlreadySigned skips assets whose "<name>.asc" companion is
	// already present in the release.
	SkipAlreadySigned bool
	// AutoConfirm suppresses the per-asset confirmation prompt.
	AutoConfirm bool
	// DigestAlgorithm names the digest logged for each downloaded asset
	// before signing. Empty means hashing.DefaultAlgorithm.
	DigestAlgorithm string
	// TempRoot is where per-release temp directories are created.
	// Empty means the current working directory.
	TempRoot string
}

func (o *Options) normalize() {
	if o.NumReleases <= 0 {
		o.NumReleases = DefaultNumReleases
	}
	if o.NumReleases > MaxReleases {
		o.NumReleases = MaxReleases
	}
	if o.DigestAlgorithm == "" {
		o.DigestAlgorithm = hashing.DefaultAlgorithm
	}
}

// ParseRepository splits an "owner/name" identifier. Anything else is a
// usage error.
func ParseRepository(s string) (owner, repo string, err error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("repository must be in 'owner/repo' format, got %q", s)
	}
	return parts[0], parts[1], nil
}
