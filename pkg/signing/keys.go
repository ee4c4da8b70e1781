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

package signing

import (
	"errors"
	"strings"
)

// ErrNoSigningKey is returned by SelectSigningKey when no secret key
// carries the signing capability.
var ErrNoSigningKey = errors.New("no suitable secret key with signing capability found")

// SecretKey describes one locally available secret key as reported by the
// keyring backend.
type SecretKey struct {
	// KeyID is the identifier passed back to the signer.
	KeyID string
	// UserIDs are the identity labels bound to the key.
	UserIDs []string
	// Capabilities is the raw capability string; an uppercase 'S' marks a
	// key that is usable for signing.
	Capabilities string
}

// CanSign reports whether the key is usable for signing.
func (k SecretKey) CanSign() bool {
	return strings.ContainsRune(k.Capabilities, 'S')
}

// PrimaryUserID returns the first identity label, or empty.
func (k SecretKey) PrimaryUserID() string {
	if len(k.UserIDs) == 0 {
		return ""
	}
	return k.UserIDs[0]
}

// SelectSigningKey returns the first key whose capabilities include
// signing. It is a pure function over the key records so key selection is
// testable without a keyring backend.
func SelectSigningKey(keys []SecretKey) (SecretKey, error) {
	for _, k := range keys {
		if k.CanSign() {
			return k, nil
		}
	}
	return SecretKey{}, ErrNoSigningKey
}
