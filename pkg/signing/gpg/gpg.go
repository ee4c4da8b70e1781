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

// Package gpg implements the signing capability and keyring on top of an
// external gpg binary. Signing produces detached armored signatures;
// success is recognized only through gpg's machine-readable status stream.
package gpg

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/nightconcept/sprout/pkg/logging"
	"github.com/nightconcept/sprout/pkg/signing"
	"github.com/nightconcept/sprout/pkg/utils"
)

// DefaultBinary is the gpg executable used when none is configured.
const DefaultBinary = "gpg"

// sigCreatedMarker is the status line gpg emits after writing a
// signature. Anything else, including an empty status stream, is failure.
const sigCreatedMarker = "[GNUPG:] SIG_CREATED"

// maxCommandError caps how much of gpg's output ends up in error messages.
const maxCommandError = 2048

// Verify interface conformance at compile time.
var (
	_ signing.Signer  = (*GPG)(nil)
	_ signing.Keyring = (*GPG)(nil)
)

// GPG wraps an external gpg binary as both Signer and Keyring.
type GPG struct {
	binary string
	logger logging.Logger
}

// New returns a GPG using the given executable path (empty means
// DefaultBinary, resolved via PATH).
func New(binary string, logger logging.Logger) *GPG {
	if binary == "" {
		binary = DefaultBinary
	}
	return &GPG{
		binary: binary,
		logger: logging.EnsureLogger(logger),
	}
}

// Sign creates a detached armored signature for filePath at
// filePath + ".asc", unlocking the key with passphrase via loopback
// pinentry. On any failure a partially written signature file is removed
// before returning.
func (g *GPG) Sign(ctx context.Context, filePath, keyID, passphrase string) (string, error) {
	if err := utils.ValidateFileExists("file to sign", filePath); err != nil {
		return "", err
	}

	sigPath := filePath + ".asc"
	g.logger.Info("signing %s with key %s", filePath, keyID)

	args := []string{
		"--batch", "--yes", "--no-tty",
		"--status-fd", "1",
		"--pinentry-mode", "loopback",
		"--passphrase-fd", "0",
		"--local-user", keyID,
		"--armor",
		"--output", sigPath,
		"--detach-sign", filePath,
	}

	// #nosec G204 -- binary and args are operator-controlled
	cmd := exec.CommandContext(ctx, g.binary, args...)
	cmd.Stdin = strings.NewReader(passphrase + "\n")
	var status, stderr bytes.Buffer
	cmd.Stdout = &status
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	created := strings.Contains(status.String(), sigCreatedMarker)

	if runErr != nil || !created {
		g.logger.Error("signing %s failed: status %q, stderr %q",
			filePath, trimOutput(status.String()), trimOutput(stderr.String()))
		removeIfExists(sigPath)
		if runErr != nil {
			return "", fmt.Errorf("gpg detach-sign %s: %w", filePath, runErr)
		}
		return "", fmt.Errorf("gpg did not report a created signature for %s", filePath)
	}

	g.logger.Info("signed %s, signature at %s", filePath, sigPath)
	return sigPath, nil
}

// SecretKeys lists the secret keys in the operator's keyring.
func (g *GPG) SecretKeys(ctx context.Context) ([]signing.SecretKey, error) {
	// #nosec G204 -- binary is operator-controlled
	cmd := exec.CommandContext(ctx, g.binary,
		"--batch", "--no-tty", "--with-colons", "--list-secret-keys")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("listing secret keys: %w: %s", err, trimOutput(stderr.String()))
	}
	return parseColonListing(stdout.String()), nil
}

// parseColonListing extracts secret keys from gpg's --with-colons output.
// A "sec" record starts a key (field 5 is the key id, field 12 the
// capability string); following "uid" records carry identity labels
// (field 10) until the next "sec".
func parseColonListing(out string) []signing.SecretKey {
	var (
		keys    []signing.SecretKey
		current *signing.SecretKey
	)

	for _, line := range strings.Split(out, "\n") {
		fields := strings.Split(line, ":")
		switch fields[0] {
		case "sec":
			if current != nil {
				keys = append(keys, *current)
			}
			current = &signing.SecretKey{}
			if len(fields) > 4 {
				current.KeyID = fields[4]
			}
			if len(fields) > 11 {
				current.Capabilities = fields[11]
			}
		case "uid":
			if current != nil && len(fields) > 9 && fields[9] != "" {
				current.UserIDs = append(current.UserIDs, fields[9])
			}
		}
	}
	if current != nil {
		keys = append(keys, *current)
	}
	return keys
}

func removeIfExists(path string) {
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
}

func trimOutput(out string) string {
	clean := strings.TrimSpace(out)
	if len(clean) > maxCommandError {
		return clean[:maxCommandError] + "..."
	}
	return clean
}
