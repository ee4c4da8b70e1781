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

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/nightconcept/sprout/cmd/sprout/cli/options"
	"github.com/nightconcept/sprout/internal/github"
	"github.com/nightconcept/sprout/internal/prompt"
	"github.com/nightconcept/sprout/pkg/resign"
	"github.com/nightconcept/sprout/pkg/signing/gpg"
	"github.com/nightconcept/sprout/pkg/utils"
	"github.com/spf13/cobra"
)

func Sign() *cobra.Command {
	o := &options.SignOptions{}

	long := `Sign published release assets retroactively.

Fetches the most recent releases of OWNER/REPO, downloads each asset
that is not itself a signature, produces a detached armored GPG
signature with a locally held secret key, and uploads the .asc file
back to the release. The downloaded copy and the signature are removed
after each asset.

A GitHub API token with write access to the repository's releases is
required. It is read from --github-token, then from the
SPROUT_GITHUB_TOKEN or GITHUB_TOKEN environment variable, and finally
prompted for interactively.`

	cmd := &cobra.Command{
		Use:   "sign [OPTIONS] OWNER/REPO",
		Short: "Sign published release assets retroactively.",
		Long:  long,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			obs := ro.NewObservability()
			log := obs.Logger

			owner, repo, err := resign.ParseRepository(args[0])
			if err != nil {
				return err
			}

			terminal := prompt.NewTerminal()

			token, err := resolveToken(o.GitHubToken, terminal)
			if err != nil {
				return err
			}
			log.Debug("using GitHub token %s", utils.MaskToken(token))

			ctx := cmd.Context()
			if ro.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, ro.Timeout)
				defer cancel()
			}

			client := github.NewClient(ctx, github.ClientOptions{
				BaseURL: o.APIBase,
				Token:   token,
				Logger:  log,
			})

			gpgTool := gpg.New(o.GPGProgram, log)

			runner, err := resign.NewRunner(resign.Options{
				Owner:             owner,
				Repo:              repo,
				NumReleases:       o.NumReleases,
				SkipAlreadySigned: o.SkipAlreadySigned,
				AutoConfirm:       o.Yes,
				DigestAlgorithm:   o.DigestAlgorithm,
				TempRoot:          o.TempDir,
			}, resign.Deps{
				Lister:   client,
				Transfer: client,
				Signer:   gpgTool,
				Keyring:  gpgTool,
				Prompter: terminal,
				Logger:   log,
			})
			if err != nil {
				return err
			}

			_, err = runner.Run(ctx)
			return err
		},
	}

	o.AddFlags(cmd)
	return cmd
}

// resolveToken finds the GitHub token: flag first, then environment,
// then an interactive masked prompt.
func resolveToken(flagValue string, terminal *prompt.Terminal) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	for _, env := range []string{options.EnvPrefix + "_GITHUB_TOKEN", "GITHUB_TOKEN"} {
		if v := os.Getenv(env); v != "" {
			return v, nil
		}
	}

	token, err := terminal.Secret("Enter GitHub API token")
	if err != nil {
		return "", fmt.Errorf("reading GitHub token: %w", err)
	}
	if token == "" {
		return "", fmt.Errorf("a GitHub API token is required")
	}
	return token, nil
}
