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

package options

import (
	"fmt"

	"github.com/nightconcept/sprout/internal/github"
	"github.com/nightconcept/sprout/internal/hashing"
	"github.com/nightconcept/sprout/pkg/resign"
	"github.com/spf13/cobra"
)

// SignOptions defines flags for the sign command.
type SignOptions struct {
	// GitHubToken authenticates API calls. Falls back to the
	// SPROUT_GITHUB_TOKEN or GITHUB_TOKEN environment variable, then to an
	// interactive prompt.
	GitHubToken string
	// APIBase overrides the GitHub API base URL, e.g. for GitHub
	// Enterprise instances.
	APIBase string
	// GPGProgram is the gpg binary to invoke.
	GPGProgram string
	// NumReleases is how many recent releases to process.
	NumReleases int
	// SkipAlreadySigned skips assets that already have an .asc companion.
	SkipAlreadySigned bool
	// Yes suppresses per-asset confirmation prompts.
	Yes bool
	// DigestAlgorithm is logged for each downloaded asset before signing.
	DigestAlgorithm string
	// TempDir overrides where per-release working directories are created.
	TempDir string
}

var _ FlagAdder = (*SignOptions)(nil)

// AddFlags adds sign command flags to the cobra command.
func (o *SignOptions) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.GitHubToken, "github-token", "",
		"GitHub API token. Defaults to the SPROUT_GITHUB_TOKEN or GITHUB_TOKEN environment variable; prompts if neither is set.")

	cmd.Flags().StringVar(&o.APIBase, "api-url", github.DefaultAPIBase,
		"GitHub API base URL.")

	cmd.Flags().StringVar(&o.GPGProgram, "gpg-program", "gpg",
		"gpg binary to use for signing.")

	cmd.Flags().IntVarP(&o.NumReleases, "num-releases", "n", resign.DefaultNumReleases,
		fmt.Sprintf("Number of recent releases to process (max %d).", resign.MaxReleases))

	cmd.Flags().BoolVar(&o.SkipAlreadySigned, "skip-already-signed", false,
		"Skip assets that already have a corresponding .asc signature in the release.")

	cmd.Flags().BoolVarP(&o.Yes, "yes", "y", false,
		"Sign all eligible assets without per-asset confirmation.")

	cmd.Flags().StringVar(&o.DigestAlgorithm, "digest-algorithm", hashing.DefaultAlgorithm,
		fmt.Sprintf("Digest algorithm logged for each asset (%s).", hashing.SupportedAlgorithmsList()))

	cmd.Flags().StringVar(&o.TempDir, "temp-dir", "",
		"Directory for temporary working files. Defaults to the current directory.")
	_ = cmd.MarkFlagDirname("temp-dir")
}
