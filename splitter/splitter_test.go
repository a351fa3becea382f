package splitter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFixture(t *testing.T, dir, name string, size int) string {
	t.Helper()
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 251)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture failed: %v", err)
	}
	return path
}

func TestNeedsSplitting(t *testing.T) {
	cases := []struct {
		size      int64
		threshold int64
		want      bool
	}{
		{0, 100, false},  // unknown size never splits
		{-1, 100, false}, // negative treated as unknown
		{100, 100, false},
		{101, 100, true},
		{DefaultThreshold, 0, false},
		{DefaultThreshold + 1, 0, true},
	}
	for _, c := range cases {
		if got := NeedsSplitting(c.size, c.threshold); got != c.want {
			t.Errorf("NeedsSplitting(%d, %d) = %v, want %v", c.size, c.threshold, got, c.want)
		}
	}
}

func TestSplitFileSizesAndNumbering(t *testing.T) {
	const fileSize = 10*1000 + 37
	const chunkSize = 1000

	path := writeFixture(t, t.TempDir(), "sample.bin", fileSize)
	parts, err := SplitFile(path, chunkSize)
	if err != nil {
		t.Fatalf("SplitFile failed: %v", err)
	}

	wantParts := 11 // ceil(10037 / 1000)
	if len(parts) != wantParts {
		t.Fatalf("got %d parts, want %d", len(parts), wantParts)
	}

	var sum int64
	for i, p := range parts {
		if p.Number != i+1 {
			t.Errorf("part %d has number %d", i, p.Number)
		}
		if p.Total != wantParts {
			t.Errorf("part %d has total %d, want %d", p.Number, p.Total, wantParts)
		}
		if i < len(parts)-1 && p.Size != chunkSize {
			t.Errorf("part %d has size %d, want %d", p.Number, p.Size, chunkSize)
		}
		sum += p.Size
	}
	if sum != fileSize {
		t.Errorf("part sizes sum to %d, want %d", sum, fileSize)
	}
	if last := parts[len(parts)-1]; last.Size != 37 {
		t.Errorf("last part size = %d, want 37", last.Size)
	}
}

func TestSplitFileRoundTrip(t *testing.T) {
	const fileSize = 5*1024 + 123
	path := writeFixture(t, t.TempDir(), "roundtrip.bin", fileSize)
	original, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture failed: %v", err)
	}

	parts, err := SplitFile(path, 1024)
	if err != nil {
		t.Fatalf("SplitFile failed: %v", err)
	}

	// Reassemble by the documented wire contract: concatenate
	// {name}.partNNN in ascending numeric order.
	var joined bytes.Buffer
	for i := 1; i <= parts[0].Total; i++ {
		partPath := fmt.Sprintf("%s.part%03d", path, i)
		data, err := os.ReadFile(partPath)
		if err != nil {
			t.Fatalf("read part %d failed: %v", i, err)
		}
		joined.Write(data)
	}

	if !bytes.Equal(joined.Bytes(), original) {
		t.Fatal("joined parts do not match the original file")
	}
}

func TestSplitFileExactMultiple(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "exact.bin", 4096)
	parts, err := SplitFile(path, 1024)
	if err != nil {
		t.Fatalf("SplitFile failed: %v", err)
	}
	if len(parts) != 4 {
		t.Fatalf("got %d parts, want 4", len(parts))
	}
	for _, p := range parts {
		if p.Size != 1024 {
			t.Errorf("part %d size = %d, want 1024", p.Number, p.Size)
		}
	}
}

func TestSplitFileEmpty(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "empty.bin", 0)
	parts, err := SplitFile(path, 1024)
	if err != nil {
		t.Fatalf("SplitFile failed: %v", err)
	}
	if len(parts) != 0 {
		t.Fatalf("empty file produced %d parts", len(parts))
	}
}

func TestPartName(t *testing.T) {
	p := Part{Number: 7, Total: 12, OriginalName: "movie.mkv"}
	if got, want := p.PartName(), "movie.mkv.part007"; got != want {
		t.Errorf("PartName() = %q, want %q", got, want)
	}
}

func TestCleanupPartsTolerant(t *testing.T) {
	dir := t.TempDir()
	existing := writeFixture(t, dir, "a.part001", 10)
	parts := []Part{
		{Path: existing},
		{Path: filepath.Join(dir, "a.part002")}, // already gone
	}
	CleanupParts(parts)
	if _, err := os.Stat(existing); !os.IsNotExist(err) {
		t.Fatal("existing part was not removed")
	}
}

// stubFetcher writes a fixed payload instead of hitting the network.
type stubFetcher struct {
	payload []byte
	err     error
}

func (s *stubFetcher) Fetch(ctx context.Context, url, dest string) error {
	if s.err != nil {
		return s.err
	}
	return os.WriteFile(dest, s.payload, 0o644)
}

func TestSplitFromURLSingleFile(t *testing.T) {
	payload := make([]byte, 500)
	s := New(t.TempDir(), 1000, &stubFetcher{payload: payload}, nil)

	res, err := s.SplitFromURL(context.Background(), "http://example.invalid/f", "small.bin")
	if err != nil {
		t.Fatalf("SplitFromURL failed: %v", err)
	}
	if res.NeedsSplit {
		t.Fatal("small file should not need splitting")
	}
	if res.FileSize != 500 {
		t.Errorf("FileSize = %d, want 500", res.FileSize)
	}
	if _, err := os.Stat(res.FilePath); err != nil {
		t.Fatalf("single-file result path missing: %v", err)
	}
	if !strings.HasSuffix(res.FilePath, "_small.bin") {
		t.Errorf("temp path %q does not follow the {timestamp}_{filename} scheme", res.FilePath)
	}
}

func TestSplitFromURLSplitResult(t *testing.T) {
	payload := make([]byte, 2500)
	for i := range payload {
		payload[i] = byte(i)
	}
	s := New(t.TempDir(), 1000, &stubFetcher{payload: payload}, nil)

	res, err := s.SplitFromURL(context.Background(), "http://example.invalid/f", "big.bin")
	if err != nil {
		t.Fatalf("SplitFromURL failed: %v", err)
	}
	if !res.NeedsSplit {
		t.Fatal("oversized file should be split")
	}
	if len(res.Parts) != 3 {
		t.Fatalf("got %d parts, want 3", len(res.Parts))
	}
	if res.TotalSize != 2500 {
		t.Errorf("TotalSize = %d, want 2500", res.TotalSize)
	}
	for i, p := range res.Parts {
		if p.Number != i+1 || p.Total != 3 {
			t.Errorf("part %d has numbering %d/%d", i, p.Number, p.Total)
		}
		if p.OriginalName != "big.bin" {
			t.Errorf("part %d original name = %q, want big.bin", p.Number, p.OriginalName)
		}
	}
	// Pre-split download must be gone, only the parts remain.
	entries, err := os.ReadDir(s.TempDir)
	if err != nil {
		t.Fatalf("read temp dir failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("temp dir has %d entries, want 3 parts", len(entries))
	}

	var joined bytes.Buffer
	for _, p := range res.Parts {
		data, err := os.ReadFile(p.Path)
		if err != nil {
			t.Fatalf("read part failed: %v", err)
		}
		joined.Write(data)
	}
	if !bytes.Equal(joined.Bytes(), payload) {
		t.Fatal("joined parts do not reproduce the downloaded payload")
	}
}

func TestSplitFromURLFetchFailure(t *testing.T) {
	s := New(t.TempDir(), 1000, &stubFetcher{err: &DownloadError{Code: 22}}, nil)
	_, err := s.SplitFromURL(context.Background(), "http://example.invalid/f", "x.bin")
	if err == nil {
		t.Fatal("expected fetch error")
	}
	var dlErr *DownloadError
	if !errors.As(err, &dlErr) || dlErr.Code != 22 {
		t.Fatalf("expected DownloadError with code 22, got %v", err)
	}
}

func TestJoinInstructions(t *testing.T) {
	got := JoinInstructions("game.xapk", 3)
	for _, want := range []string{"game.xapk.part001", "game.xapk.part002", "game.xapk.part003"} {
		if !strings.Contains(got, want) {
			t.Errorf("instructions missing part name %q", want)
		}
	}
	if strings.Contains(got, "game.xapk.part004") {
		t.Error("instructions list a part that does not exist")
	}
}

func TestFormatBytes(t *testing.T) {
	cases := []struct {
		n    int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.00 KB"},
		{5 * 1024 * 1024, "5.00 MB"},
		{3 * 1024 * 1024 * 1024, "3.00 GB"},
	}
	for _, c := range cases {
		if got := FormatBytes(c.n); got != c.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", c.n, got, c.want)
		}
	}
}
