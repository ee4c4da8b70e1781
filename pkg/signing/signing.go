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

// Package signing defines the signing capability sprout delegates to and
// the key-selection logic over locally available secret keys. The gpg
// subpackage provides the implementation backed by an external gpg binary.
package signing

import "context"

// Signer produces a detached signature for a local file.
//
// Sign returns the path of the signature file on success. Implementations
// must not leave a partial signature file behind on failure.
type Signer interface {
	Sign(ctx context.Context, filePath, keyID, passphrase string) (string, error)
}

// Keyring lists the locally available secret signing keys. Keys are
// selected, never created or modified, by sprout.
type Keyring interface {
	SecretKeys(ctx context.Context) ([]SecretKey, error)
}
