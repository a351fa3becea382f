package main

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func parsePage(t *testing.T, body string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestFindDownloadButton(t *testing.T) {
	page := `<html><body>
		<a href="/about">About</a>
		<div><a id="downloadButton" class="input popsok"
			href="https://download123.mediafire.com/abc/file.zip">Download</a></div>
	</body></html>`
	doc := parsePage(t, page)
	if got := findDownloadButton(doc); got != "https://download123.mediafire.com/abc/file.zip" {
		t.Fatalf("got %q", got)
	}
}

func TestFindDownloadButtonMissing(t *testing.T) {
	doc := parsePage(t, `<html><body><a href="/x">x</a></body></html>`)
	if got := findDownloadButton(doc); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}

func TestFindDownloadButtonIgnoresRelative(t *testing.T) {
	doc := parsePage(t, `<html><body><a id="downloadButton" href="/broken">x</a></body></html>`)
	if got := findDownloadButton(doc); got != "" {
		t.Fatalf("relative href accepted: %q", got)
	}
}
