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

package prompt

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

// pipeTerminal returns a Terminal whose input is fed from the given
// scripted lines.
func pipeTerminal(t *testing.T, input string, out *bytes.Buffer) *Terminal {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("creating pipe: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	go func() {
		defer w.Close()
		_, _ = w.WriteString(input)
	}()
	return &Terminal{In: r, Out: out}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		answer string
		want   bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", true},
		{"n\n", false},
		{"\n", false},
		{"whatever\n", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		term := pipeTerminal(t, tt.answer, &out)
		got, err := term.Confirm("Sign and re-upload asset 'widget.zip'?")
		if err != nil {
			t.Fatalf("Confirm(%q) error: %v", tt.answer, err)
		}
		if got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.answer, got, tt.want)
		}
		if !strings.Contains(out.String(), "(y/N)") {
			t.Errorf("prompt missing y/N hint: %q", out.String())
		}
	}
}

func TestSecretNonTerminalFallback(t *testing.T) {
	var out bytes.Buffer
	term := pipeTerminal(t, "hunter2\n", &out)
	got, err := term.Secret("Enter GPG passphrase")
	if err != nil {
		t.Fatalf("Secret() error: %v", err)
	}
	if got != "hunter2" {
		t.Errorf("Secret() = %q, want hunter2", got)
	}
}

func TestSecretBlankAllowed(t *testing.T) {
	var out bytes.Buffer
	term := pipeTerminal(t, "\n", &out)
	got, err := term.Secret("Enter GPG passphrase (leave blank if none)")
	if err != nil {
		t.Fatalf("Secret() error: %v", err)
	}
	if got != "" {
		t.Errorf("Secret() = %q, want empty", got)
	}
}

func TestMultiplePromptsShareReader(t *testing.T) {
	var out bytes.Buffer
	term := pipeTerminal(t, "y\nn\nsecret\n", &out)

	first, err := term.Confirm("first")
	if err != nil || !first {
		t.Fatalf("first Confirm = %v, %v; want true", first, err)
	}
	second, err := term.Confirm("second")
	if err != nil || second {
		t.Fatalf("second Confirm = %v, %v; want false", second, err)
	}
	secret, err := term.Secret("third")
	if err != nil || secret != "secret" {
		t.Fatalf("Secret = %q, %v; want %q", secret, err, "secret")
	}
}
