package main

import (
	"strings"
	"testing"
)

func TestFilenameFromURL(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://example.com/files/movie.mkv", "movie.mkv"},
		{"https://example.com/files/My%20File.zip?token=abc", "My File.zip"},
		{"https://example.com/", "file_job1.bin"},
		{"https://example.com", "file_job1.bin"},
	}
	for _, tc := range cases {
		if got := filenameFromURL(tc.url, "job1"); got != tc.want {
			t.Errorf("filenameFromURL(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}

func TestMimeTypeFor(t *testing.T) {
	if got := mimeTypeFor("a.pdf"); got != "application/pdf" {
		t.Errorf("pdf: got %q", got)
	}
	if got := mimeTypeFor("a.part003"); got != "application/octet-stream" {
		t.Errorf("unknown ext: got %q", got)
	}
	if got := mimeTypeFor("noext"); got != "application/octet-stream" {
		t.Errorf("no ext: got %q", got)
	}
}

func TestLooksLikeURL(t *testing.T) {
	if !looksLikeURL("https://example.com/x") || !looksLikeURL("http://a.b") {
		t.Fatal("valid URLs rejected")
	}
	if looksLikeURL("example.com") || looksLikeURL("hello") {
		t.Fatal("non-URLs accepted")
	}
}

func TestURLRoutePatterns(t *testing.T) {
	match := func(u string) int {
		for i, r := range urlRoutes {
			if r.pattern.MatchString(u) {
				return i
			}
		}
		return -1
	}
	if match("https://vt.tiktok.com/ZSxyz/") != 0 {
		t.Error("tiktok link not routed")
	}
	if match("https://drive.google.com/file/d/abc123/view") < 0 {
		t.Error("drive link not routed")
	}
	if match("https://www.mediafire.com/file/xyz/f.zip/file") < 0 {
		t.Error("mediafire link not routed")
	}
	if match("https://example.com/file.zip") != -1 {
		t.Error("plain link claimed by a downloader route")
	}
}

func TestMakeCard(t *testing.T) {
	card := makeCard("TITLE", "body")
	if !strings.Contains(card, "TITLE") || !strings.Contains(card, "body") {
		t.Fatalf("card missing content: %q", card)
	}
}
