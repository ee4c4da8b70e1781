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

package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/nightconcept/sprout/pkg/release"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(context.Background(), ClientOptions{
		BaseURL: srv.URL,
		Token:   "test-token",
	})
	return client, srv
}

func releasePage(start, n int) []release.Release {
	page := make([]release.Release, n)
	for i := range page {
		page[i] = release.Release{
			ID:      int64(start + i),
			TagName: fmt.Sprintf("v0.0.%d", start+i),
		}
	}
	return page
}

func TestListReleasesTruncatesToCount(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if got := r.URL.Query().Get("per_page"); got != "30" {
			t.Errorf("per_page = %s, want 30", got)
		}
		// Two full pages available.
		if page <= 2 {
			_ = json.NewEncoder(w).Encode(releasePage((page-1)*30, 30))
			return
		}
		_ = json.NewEncoder(w).Encode([]release.Release{})
	}))

	releases, err := client.ListReleases(context.Background(), "acme", "widgets", 5)
	if err != nil {
		t.Fatalf("ListReleases() error: %v", err)
	}
	if len(releases) != 5 {
		t.Fatalf("got %d releases, want 5", len(releases))
	}
	// Platform recency order is preserved.
	if releases[0].TagName != "v0.0.0" || releases[4].TagName != "v0.0.4" {
		t.Errorf("unexpected order: first %s last %s", releases[0].TagName, releases[4].TagName)
	}
}

func TestListReleasesStopsOnShortPage(t *testing.T) {
	var pagesServed int
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pagesServed++
		_ = json.NewEncoder(w).Encode(releasePage(0, 3))
	}))

	releases, err := client.ListReleases(context.Background(), "acme", "widgets", 10)
	if err != nil {
		t.Fatalf("ListReleases() error: %v", err)
	}
	if len(releases) != 3 {
		t.Errorf("got %d releases, want all 3 available", len(releases))
	}
	if pagesServed != 1 {
		t.Errorf("served %d pages, want 1 (short page ends pagination)", pagesServed)
	}
}

func TestListReleasesStopsOnEmptyPage(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]release.Release{})
	}))

	releases, err := client.ListReleases(context.Background(), "acme", "widgets", 5)
	if err != nil {
		t.Fatalf("ListReleases() error: %v", err)
	}
	if len(releases) != 0 {
		t.Errorf("got %d releases, want 0", len(releases))
	}
}

func TestListReleasesPaginatesAcrossFullPages(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		switch page {
		case 1:
			_ = json.NewEncoder(w).Encode(releasePage(0, 30))
		case 2:
			_ = json.NewEncoder(w).Encode(releasePage(30, 2))
		default:
			t.Errorf("unexpected page request: %d", page)
			_ = json.NewEncoder(w).Encode([]release.Release{})
		}
	}))

	// The cap in the CLI is 30, but the lister itself honors any count.
	releases, err := client.ListReleases(context.Background(), "acme", "widgets", 32)
	if err != nil {
		t.Fatalf("ListReleases() error: %v", err)
	}
	if len(releases) != 32 {
		t.Errorf("got %d releases, want 32", len(releases))
	}
}

func TestListReleasesFailureReturnsNoPartialResult(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page == 1 {
			_ = json.NewEncoder(w).Encode(releasePage(0, 30))
			return
		}
		http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
	}))

	releases, err := client.ListReleases(context.Background(), "acme", "widgets", 40)
	if err == nil {
		t.Fatal("expected error from failing page")
	}
	if releases != nil {
		t.Errorf("expected no partial result, got %d releases", len(releases))
	}
}

func TestDownloadAssetStreamsToFile(t *testing.T) {
	var gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write([]byte("binary-bytes"))
	}))
	defer srv.Close()

	client := NewClient(context.Background(), ClientOptions{Token: "t"})
	dest := filepath.Join(t.TempDir(), "widget.zip")
	asset := release.Asset{Name: "widget.zip", URL: srv.URL + "/assets/1"}

	if err := client.DownloadAsset(context.Background(), asset, dest); err != nil {
		t.Fatalf("DownloadAsset() error: %v", err)
	}
	if gotAccept != "application/octet-stream" {
		t.Errorf("Accept = %q, want application/octet-stream", gotAccept)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading downloaded file: %v", err)
	}
	if string(data) != "binary-bytes" {
		t.Errorf("downloaded content = %q", data)
	}
}

func TestDownloadAssetErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(context.Background(), ClientOptions{Token: "t"})
	dest := filepath.Join(t.TempDir(), "widget.zip")
	asset := release.Asset{Name: "widget.zip", URL: srv.URL + "/assets/1"}

	if err := client.DownloadAsset(context.Background(), asset, dest); err == nil {
		t.Fatal("expected error for 404 response")
	}
}

func TestUploadAsset(t *testing.T) {
	var (
		gotPath        string
		gotName        string
		gotContentType string
		gotBody        string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotName = r.URL.Query().Get("name")
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(release.Asset{ID: 99, Name: gotName})
	}))
	defer srv.Close()

	sigPath := filepath.Join(t.TempDir(), "widget.zip.asc")
	if err := os.WriteFile(sigPath, []byte("-----BEGIN PGP SIGNATURE-----"), 0o644); err != nil {
		t.Fatalf("writing signature file: %v", err)
	}

	client := NewClient(context.Background(), ClientOptions{Token: "t"})
	uploadURL := srv.URL + "/repos/acme/widgets/releases/1/assets{?name,label}"

	created, err := client.UploadAsset(context.Background(), uploadURL, sigPath)
	if err != nil {
		t.Fatalf("UploadAsset() error: %v", err)
	}
	if gotPath != "/repos/acme/widgets/releases/1/assets" {
		t.Errorf("posted to %q, template not stripped", gotPath)
	}
	if gotName != "widget.zip.asc" {
		t.Errorf("name param = %q, want widget.zip.asc", gotName)
	}
	if gotContentType != "application/octet-stream" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if gotBody != "-----BEGIN PGP SIGNATURE-----" {
		t.Errorf("body = %q", gotBody)
	}
	if created.ID != 99 {
		t.Errorf("created asset ID = %d, want 99", created.ID)
	}
}

func TestUploadAssetErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Validation Failed"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	sigPath := filepath.Join(t.TempDir(), "widget.zip.asc")
	if err := os.WriteFile(sigPath, []byte("sig"), 0o644); err != nil {
		t.Fatalf("writing signature file: %v", err)
	}

	client := NewClient(context.Background(), ClientOptions{Token: "t"})
	if _, err := client.UploadAsset(context.Background(), srv.URL+"/upload{?name,label}", sigPath); err == nil {
		t.Fatal("expected error for 422 response")
	}
}

func TestUploadEndpoint(t *testing.T) {
	tests := []struct {
		url  string
		name string
		want string
	}{
		{
			"https://uploads.github.com/repos/acme/widgets/releases/1/assets{?name,label}",
			"widget.zip.asc",
			"https://uploads.github.com/repos/acme/widgets/releases/1/assets?name=widget.zip.asc",
		},
		{
			"https://uploads.github.com/repos/acme/widgets/releases/1/assets",
			"a b.asc",
			"https://uploads.github.com/repos/acme/widgets/releases/1/assets?name=a+b.asc",
		},
	}
	for _, tt := range tests {
		if got := UploadEndpoint(tt.url, tt.name); got != tt.want {
			t.Errorf("UploadEndpoint(%q, %q) = %q, want %q", tt.url, tt.name, got, tt.want)
		}
	}
}
