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
	"os"

	"github.com/nightconcept/sprout/pkg/logging"
)

// assetScope owns the temporary files materialized while processing one
// asset. Release runs on every exit path of the processing step and
// removes whatever was created: the downloaded copy, the signature, and
// the temp directory once it is empty. A non-empty directory is left in
// place with a warning; that is a degraded condition, not an error.
type assetScope struct {
	dir        string
	downloaded string
	signature  string
	logger     logging.Logger
}

func newAssetScope(dir string, logger logging.Logger) *assetScope {
	return &assetScope{dir: dir, logger: logger}
}

// Release deletes the scope's files and, if now empty, its directory.
func (s *assetScope) Release() {
	removeIfPresent(s.downloaded)
	removeIfPresent(s.signature)

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		// Directory never got created (e.g. download failed before
		// MkdirAll) or is already gone; nothing to clean.
		return
	}
	if len(entries) == 0 {
		_ = os.Remove(s.dir)
		return
	}
	s.logger.Warn("temporary directory %s is not empty after processing; manual cleanup may be required", s.dir)
}

func removeIfPresent(path string) {
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
}
