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

// Package prompt isolates terminal interaction behind a small capability
// interface so the signing workflow can be driven by scripted responses
// in tests. The terminal implementation masks secret input.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter asks the operator questions.
type Prompter interface {
	// Confirm asks a yes/no question; only an explicit "y"/"yes" answer
	// (case-insensitive) confirms.
	Confirm(label string) (bool, error)
	// Secret reads a line without echoing it when attached to a
	// terminal. A blank answer is allowed.
	Secret(label string) (string, error)
}

// Verify Terminal implements Prompter at compile time.
var _ Prompter = (*Terminal)(nil)

// Terminal prompts on Out and reads answers from In. When In is not a
// terminal (tests, pipes), Secret falls back to a plain line read.
type Terminal struct {
	In  *os.File
	Out io.Writer

	reader *bufio.Reader
}

// NewTerminal returns a Terminal on stdin/stderr. Prompts go to stderr so
// they stay visible when stdout is redirected.
func NewTerminal() *Terminal {
	return &Terminal{In: os.Stdin, Out: os.Stderr}
}

func (t *Terminal) bufIn() *bufio.Reader {
	if t.reader == nil {
		t.reader = bufio.NewReader(t.In)
	}
	return t.reader
}

// Confirm implements Prompter.
func (t *Terminal) Confirm(label string) (bool, error) {
	fmt.Fprintf(t.Out, "%s (y/N): ", label)
	line, err := t.bufIn().ReadString('\n')
	if err != nil && line == "" {
		return false, fmt.Errorf("reading confirmation: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// Secret implements Prompter.
func (t *Terminal) Secret(label string) (string, error) {
	fmt.Fprintf(t.Out, "%s: ", label)

	fd := int(t.In.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(t.Out)
		if err != nil {
			return "", fmt.Errorf("reading secret: %w", err)
		}
		return string(raw), nil
	}

	line, err := t.bufIn().ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading secret: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
