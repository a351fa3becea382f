package main

import (
	"strings"
	"testing"
)

func TestExtractDriveID(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://drive.google.com/file/d/1AbC-def_123/view?usp=sharing", "1AbC-def_123"},
		{"https://drive.google.com/open?id=1AbC-def_123", "1AbC-def_123"},
		{"https://drive.google.com/uc?export=download&id=1AbC-def_123", "1AbC-def_123"},
		{"https://drive.usercontent.google.com/download?id=1AbC-def_123&export=download", "1AbC-def_123"},
		{"https://example.com/file/d/123", ""},
		{"not a url", ""},
	}
	for _, tc := range cases {
		if got := extractDriveID(tc.url); got != tc.want {
			t.Errorf("extractDriveID(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}

func TestDriveDownloadURL(t *testing.T) {
	u := driveDownloadURL("abc123")
	if !strings.Contains(u, "id=abc123") || !strings.Contains(u, "confirm=t") {
		t.Fatalf("unexpected url: %s", u)
	}
}
