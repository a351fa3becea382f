package splitter

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	waLog "go.mau.fi/whatsmeow/util/log"
)

// Fetcher retrieves a URL to a local file. The orchestrator does not
// care whether the implementation shells out or speaks HTTP itself.
type Fetcher interface {
	Fetch(ctx context.Context, url, dest string) error
}

// DownloadError is returned when the downloader subprocess fails.
type DownloadError struct {
	Code int
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("aria2c exited with code %d", e.Code)
}

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Aria2Fetcher downloads with the aria2c CLI: 16-way segmented,
// resumable, with a browser user agent and referer to get past naive
// hot-link checks.
type Aria2Fetcher struct {
	Binary  string // defaults to "aria2c"
	Referer string // defaults to "https://apkdone.com/"
	Log     waLog.Logger
}

func (f *Aria2Fetcher) binary() string {
	if f.Binary != "" {
		return f.Binary
	}
	return "aria2c"
}

func (f *Aria2Fetcher) log() waLog.Logger {
	if f.Log != nil {
		return f.Log
	}
	return waLog.Noop
}

func (f *Aria2Fetcher) args(url, dest string) []string {
	referer := f.Referer
	if referer == "" {
		referer = "https://apkdone.com/"
	}
	return []string{
		"-x", "16",
		"-s", "16",
		"-k", "1M",
		"--max-connection-per-server=16",
		"--min-split-size=1M",
		"--file-allocation=none",
		"--continue=true",
		"-d", filepath.Dir(dest),
		"-o", filepath.Base(dest),
		"--timeout=600",
		"--connect-timeout=60",
		"--max-tries=10",
		"--retry-wait=5",
		"--enable-http-pipelining=true",
		"--http-accept-gzip=true",
		"--user-agent=" + browserUserAgent,
		"--referer=" + referer,
		"--header=Accept: */*",
		"--header=Accept-Language: en-US,en;q=0.9",
		url,
	}
}

var progressRe = regexp.MustCompile(`\[#\w+\s+[\d.]+\w*B/[\d.]+\w*B\((\d+)%\)`)

// parseProgress extracts the percentage from one line of aria2c console
// output, or "" if the line carries none.
func parseProgress(line string) string {
	m := progressRe.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	return m[1]
}

// Fetch runs aria2c and waits for it. Success requires exit code 0 and
// the output file present at dest; anything else is a DownloadError.
func (f *Aria2Fetcher) Fetch(ctx context.Context, url, dest string) error {
	log := f.log()
	cmd := exec.CommandContext(ctx, f.binary(), f.args(url, dest)...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("attach aria2c stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("attach aria2c stderr: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start aria2c: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		last := ""
		sc := bufio.NewScanner(stdout)
		for sc.Scan() {
			if pct := parseProgress(sc.Text()); pct != "" && pct != last {
				last = pct
				log.Infof("Progress: %s%%", pct)
			}
		}
	}()
	go func() {
		defer wg.Done()
		sc := bufio.NewScanner(stderr)
		for sc.Scan() {
			log.Warnf("aria2c: %s", sc.Text())
		}
	}()

	// The pipes must be fully drained before Wait closes them.
	wg.Wait()
	if err := cmd.Wait(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return &DownloadError{Code: exitErr.ExitCode()}
		}
		return fmt.Errorf("run aria2c: %w", err)
	}

	if _, err := os.Stat(dest); err != nil {
		return fmt.Errorf("aria2c finished but output file is missing: %w", err)
	}
	return nil
}

var probeClient = &http.Client{Timeout: 30 * time.Second}

// RemoteSize probes the declared byte length of url with a HEAD
// request. It returns 0 when the size is unavailable or the request
// fails; size-unknown is not an error, downstream just skips the
// pre-announcement.
func RemoteSize(ctx context.Context, url string) int64 {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := probeClient.Do(req)
	if err != nil {
		fmt.Printf("[Splitter] Size probe failed: %v\n", err)
		return 0
	}
	defer resp.Body.Close()

	if resp.ContentLength > 0 {
		return resp.ContentLength
	}
	return 0
}
