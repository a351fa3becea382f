package splitter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

func TestAria2Args(t *testing.T) {
	f := &Aria2Fetcher{}
	args := f.args("https://example.com/file.zip", "/tmp/splits/1700000000_file.zip")

	joined := strings.Join(args, " ")
	for _, want := range []string{
		"-x 16",
		"-s 16",
		"--min-split-size=1M",
		"--continue=true",
		"--timeout=600",
		"--connect-timeout=60",
		"--max-tries=10",
		"--retry-wait=5",
		"-d /tmp/splits",
		"-o 1700000000_file.zip",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q\nargs: %s", want, joined)
		}
	}
	if args[len(args)-1] != "https://example.com/file.zip" {
		t.Errorf("url must be the last argument, got %q", args[len(args)-1])
	}
	if !strings.Contains(joined, "--user-agent=Mozilla/5.0") {
		t.Error("args missing browser user agent")
	}
	if !strings.Contains(joined, "--referer=") {
		t.Error("args missing referer")
	}
}

func TestParseProgress(t *testing.T) {
	cases := []struct {
		line string
		want string
	}{
		{"[#2089b0 400MiB/500MiB(80%) CN:16 DL:20MiB ETA:5s]", "80"},
		{"[#1a2b3c 0B/1.2GiB(0%) CN:16]", "0"},
		{"Download complete: /tmp/file.zip", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := parseProgress(c.line); got != c.want {
			t.Errorf("parseProgress(%q) = %q, want %q", c.line, got, c.want)
		}
	}
}

func TestDownloadErrorMessage(t *testing.T) {
	err := &DownloadError{Code: 9}
	if !strings.Contains(err.Error(), "9") {
		t.Errorf("error message does not mention the exit code: %q", err.Error())
	}
}

func TestFetchNonzeroExit(t *testing.T) {
	f := &Aria2Fetcher{Binary: "false"}
	err := f.Fetch(context.Background(), "http://example.invalid/f", filepath.Join(t.TempDir(), "out.bin"))
	var dlErr *DownloadError
	if !errors.As(err, &dlErr) {
		t.Fatalf("err = %v, want DownloadError", err)
	}
	if dlErr.Code != 1 {
		t.Fatalf("Code = %d, want 1", dlErr.Code)
	}
}

func TestFetchMissingOutput(t *testing.T) {
	// A downloader that exits 0 without writing the file is a failure,
	// but not an exit-code one.
	f := &Aria2Fetcher{Binary: "true"}
	err := f.Fetch(context.Background(), "http://example.invalid/f", filepath.Join(t.TempDir(), "out.bin"))
	if err == nil {
		t.Fatal("missing output file not reported")
	}
	var dlErr *DownloadError
	if errors.As(err, &dlErr) {
		t.Fatalf("missing output misreported as exit failure: %v", err)
	}
}

func TestRemoteSize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("probe used %s, want HEAD", r.Method)
		}
		w.Header().Set("Content-Length", "12345")
	}))
	defer srv.Close()

	if got := RemoteSize(context.Background(), srv.URL); got != 12345 {
		t.Errorf("RemoteSize = %d, want 12345", got)
	}
}

func TestRemoteSizeUnavailable(t *testing.T) {
	// Unreachable host: the probe logs and reports unknown.
	if got := RemoteSize(context.Background(), "http://127.0.0.1:1/nope"); got != 0 {
		t.Errorf("RemoteSize on failure = %d, want 0", got)
	}
}
