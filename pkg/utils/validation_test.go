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

package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "asset.zip")
	if err := os.WriteFile(file, []byte("data"), 0o644); err != nil {
		t.Fatalf("writing test file: %v", err)
	}

	if err := ValidateFileExists("asset", file); err != nil {
		t.Errorf("expected no error for existing file, got: %v", err)
	}
	if err := ValidateFileExists("asset", tmpDir); err == nil {
		t.Error("expected error for directory passed as file")
	}
	if err := ValidateFileExists("asset", filepath.Join(tmpDir, "missing")); err == nil {
		t.Error("expected error for missing path")
	}
	if err := ValidateFileExists("asset", ""); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestValidateFolderExists(t *testing.T) {
	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("writing test file: %v", err)
	}

	if err := ValidateFolderExists("dir", tmpDir); err != nil {
		t.Errorf("expected no error for existing directory, got: %v", err)
	}
	if err := ValidateFolderExists("dir", file); err == nil {
		t.Error("expected error for file passed as directory")
	}
}

func TestMaskToken(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"short", "***"},
		{"12345678", "***"},
		{"ghp_abcdefghijklmnop", "ghp_...mnop"},
	}
	for _, tt := range tests {
		if got := MaskToken(tt.in); got != tt.want {
			t.Errorf("MaskToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
