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

// Package hashing computes file digests for provenance logging. Files are
// streamed in chunks so the digest of a large artifact never requires the
// whole payload in memory.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Supported digest algorithm names.
const (
	SHA256  = "sha256"
	BLAKE2B = "blake2b"
)

// DefaultAlgorithm is used when no algorithm is configured.
const DefaultAlgorithm = SHA256

// chunkSize is the read size for streaming file digests.
const chunkSize = 1 << 20

// SupportedAlgorithmsList returns the supported algorithm names joined
// for use in help text.
func SupportedAlgorithmsList() string {
	return strings.Join([]string{SHA256, BLAKE2B}, ", ")
}

// NewHasher returns a hash.Hash for the named algorithm.
func NewHasher(algorithm string) (hash.Hash, error) {
	switch strings.ToLower(strings.TrimSpace(algorithm)) {
	case SHA256:
		return sha256.New(), nil
	case BLAKE2B:
		// Keyless blake2b-256 construction never fails.
		h, err := blake2b.New256(nil)
		if err != nil {
			return nil, fmt.Errorf("initializing blake2b: %w", err)
		}
		return h, nil
	default:
		return nil, fmt.Errorf("unsupported digest algorithm %q", algorithm)
	}
}

// FileDigest streams the file at path through the named algorithm and
// returns the hex-encoded digest.
func FileDigest(path, algorithm string) (string, error) {
	h, err := NewHasher(algorithm)
	if err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
