// Package splitter implements the oversized-file transfer pipeline:
// probe a remote file's size, download it through a Fetcher, and when it
// exceeds the messaging platform's ceiling, slice it into sequential
// part files the receiver can concatenate back together.
package splitter

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	waLog "go.mau.fi/whatsmeow/util/log"
)

// DefaultThreshold is the largest file WhatsApp will take as a single
// document. Anything above it goes out as .partNNN chunks.
const DefaultThreshold int64 = 1024 * 1024 * 1024 // 1 GiB

// Part is one chunk of a split file. Parts are numbered from 1 and every
// part in a result carries the same Total.
type Part struct {
	Path         string
	Number       int
	Total        int
	Size         int64
	OriginalName string
}

// PartName returns the wire filename for this part:
// {originalName}.partNNN, 1-based, zero-padded to three digits.
// Concatenating all parts in ascending numeric order reproduces the
// original file byte for byte.
func (p Part) PartName() string {
	return fmt.Sprintf("%s.part%03d", p.OriginalName, p.Number)
}

// Result is the outcome of SplitFromURL. Callers must branch on
// NeedsSplit: FilePath/FileSize are only set for single-file results,
// Parts/TotalSize only for split ones.
type Result struct {
	NeedsSplit bool

	FilePath string
	FileSize int64

	Parts        []Part
	TotalSize    int64
	OriginalName string
}

// NeedsSplitting reports whether a file of the given size has to be
// chunked. A non-positive size means "unknown" and never triggers a
// split. A non-positive threshold falls back to DefaultThreshold.
func NeedsSplitting(size, threshold int64) bool {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return size > threshold
}

// SplitFile slices the file at path into ceil(size/chunkSize)
// sequential chunks of at most chunkSize bytes, written next to the
// source as {basename}.partNNN. An empty file yields no parts. The
// copy is streamed, so memory stays bounded regardless of file size.
// Any read or write error aborts the whole split; partially written
// parts are left on disk for the caller's cleanup.
func SplitFile(path string, chunkSize int64) ([]Part, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultThreshold
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat source file: %w", err)
	}
	fileSize := info.Size()
	total := int((fileSize + chunkSize - 1) / chunkSize)
	if total == 0 {
		return nil, nil
	}

	src, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source file: %w", err)
	}
	defer src.Close()

	base := filepath.Base(path)
	dir := filepath.Dir(path)

	parts := make([]Part, 0, total)
	for i := 0; i < total; i++ {
		partPath := filepath.Join(dir, fmt.Sprintf("%s.part%03d", base, i+1))

		dst, err := os.Create(partPath)
		if err != nil {
			return parts, fmt.Errorf("create part %d: %w", i+1, err)
		}
		written, err := io.CopyN(dst, src, chunkSize)
		if cerr := dst.Close(); err == nil && cerr != nil {
			err = cerr
		}
		if err != nil && err != io.EOF {
			return parts, fmt.Errorf("write part %d: %w", i+1, err)
		}

		parts = append(parts, Part{
			Path:         partPath,
			Number:       i + 1,
			Total:        total,
			Size:         written,
			OriginalName: base,
		})
	}

	return parts, nil
}

// CleanupParts deletes every part file, tolerating ones already gone.
func CleanupParts(parts []Part) {
	for _, p := range parts {
		if err := os.Remove(p.Path); err != nil && !os.IsNotExist(err) {
			fmt.Printf("[Splitter] Cleanup error: %v\n", err)
		}
	}
}

// Splitter is the transfer orchestrator: fetch, classify, split,
// clean up.
type Splitter struct {
	TempDir   string
	Threshold int64
	Fetcher   Fetcher
	Log       waLog.Logger
}

// New returns a Splitter writing to tempDir. A non-positive threshold
// falls back to DefaultThreshold; a nil fetcher falls back to aria2c.
func New(tempDir string, threshold int64, fetcher Fetcher, log waLog.Logger) *Splitter {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if fetcher == nil {
		fetcher = &Aria2Fetcher{Log: log}
	}
	if log == nil {
		log = waLog.Noop
	}
	return &Splitter{TempDir: tempDir, Threshold: threshold, Fetcher: fetcher, Log: log}
}

// SplitFromURL downloads url into the temp dir and returns either a
// single-file result (caller deletes FilePath after use) or a split
// result with the ordered part list. The pre-split download is removed
// once chunking succeeds; failure to remove it is logged, not fatal.
func (s *Splitter) SplitFromURL(ctx context.Context, url, filename string) (*Result, error) {
	if err := os.MkdirAll(s.TempDir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}

	// Timestamp prefix keeps concurrent jobs from colliding on a name.
	tempPath := filepath.Join(s.TempDir, fmt.Sprintf("%d_%s", time.Now().Unix(), sanitizeFilename(filename)))

	s.Log.Infof("Downloading %s", filename)
	if err := s.Fetcher.Fetch(ctx, url, tempPath); err != nil {
		return nil, err
	}

	info, err := os.Stat(tempPath)
	if err != nil {
		return nil, fmt.Errorf("stat downloaded file: %w", err)
	}
	s.Log.Infof("Download complete: %s (%s)", filename, FormatBytes(info.Size()))

	if !NeedsSplitting(info.Size(), s.Threshold) {
		return &Result{
			NeedsSplit:   false,
			FilePath:     tempPath,
			FileSize:     info.Size(),
			OriginalName: filename,
		}, nil
	}

	s.Log.Infof("Splitting %s into %s chunks", filename, FormatBytes(s.Threshold))
	parts, err := SplitFile(tempPath, s.Threshold)
	if err != nil {
		return nil, err
	}

	// The sent part names must carry the original filename, not the
	// timestamped temp name.
	for i := range parts {
		parts[i].OriginalName = filename
	}

	if err := os.Remove(tempPath); err != nil {
		s.Log.Warnf("Could not delete temp file %s: %v", tempPath, err)
	}

	return &Result{
		NeedsSplit:   true,
		Parts:        parts,
		TotalSize:    info.Size(),
		OriginalName: filename,
	}, nil
}

// JoinInstructions formats the reassembly guide shown to the receiving
// user: the exact part filenames in order, and how to join them.
func JoinInstructions(originalName string, total int) string {
	var b strings.Builder
	b.WriteString("📦 *How to join the file parts*\n\n")
	fmt.Fprintf(&b, "Original file: *%s*\n", originalName)
	fmt.Fprintf(&b, "Number of parts: *%d*\n\n", total)
	b.WriteString("📁 *Part files:*\n")
	for i := 1; i <= total; i++ {
		fmt.Fprintf(&b, "   • %s.part%03d\n", originalName, i)
	}
	b.WriteString("\n🔧 *Joining with ZArchiver:*\n")
	fmt.Fprintf(&b, "1️⃣ Download all %d parts\n", total)
	b.WriteString("2️⃣ Open ZArchiver and go to Android/media/WhatsApp/Documents\n")
	b.WriteString("3️⃣ Long-press the .part001 file and choose *Join*\n")
	fmt.Fprintf(&b, "4️⃣ The joined file is saved as *%s*\n\n", originalName)
	b.WriteString("The parts must be joined in ascending order (001, 002, ...) to restore the original file exactly.")
	return b.String()
}

// FormatBytes renders a byte count as B/KB/MB/GB for user messages.
func FormatBytes(n int64) string {
	switch {
	case n >= 1024*1024*1024:
		return fmt.Sprintf("%.2f GB", float64(n)/(1024*1024*1024))
	case n >= 1024*1024:
		return fmt.Sprintf("%.2f MB", float64(n)/(1024*1024))
	case n >= 1024:
		return fmt.Sprintf("%.2f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if name == "" {
		name = "download.bin"
	}
	return name
}
