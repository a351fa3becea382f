package main

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/types/events"

	"waguard/splitter"
	"waguard/store"
)

// filenameFromURL derives a usable filename from the URL path, falling
// back to a job-tagged name when the path gives nothing.
func filenameFromURL(rawURL, jobID string) string {
	u, err := url.Parse(rawURL)
	if err == nil {
		if name := path.Base(u.Path); name != "" && name != "/" && name != "." {
			if decoded, err := url.QueryUnescape(name); err == nil {
				name = decoded
			}
			return name
		}
	}
	return "file_" + jobID + ".bin"
}

func mimeTypeFor(filename string) string {
	if mt := mime.TypeByExtension(filepath.Ext(filename)); mt != "" {
		return mt
	}
	return "application/octet-stream"
}

// handleDirectDownload is the oversized-file pipeline: fetch the URL
// server-side, split when it exceeds the size limit, and deliver the
// file or its numbered parts as documents.
func handleDirectDownload(client *whatsmeow.Client, v *events.Message, rawURL, filename string) {
	if rawURL == "" {
		replyMessage(client, v, makeCard("📥 DOWNLOAD", fmt.Sprintf(
			"Usage:\n┃ %sdl <direct url>\n┃\n┃ Files over %s are split\n┃ into parts automatically.",
			Config.Prefix, splitter.FormatBytes(Config.SizeLimit))))
		return
	}

	jobID := uuid.NewString()[:8]
	if filename == "" {
		filename = filenameFromURL(rawURL, jobID)
	}

	react(client, v.Info.Chat, v.Info.ID, "⏳")

	sizeLine := "❓ Unknown"
	if size := splitter.RemoteSize(context.Background(), rawURL); size > 0 {
		sizeLine = splitter.FormatBytes(size)
		if splitter.NeedsSplitting(size, Config.SizeLimit) {
			parts := int((size + Config.SizeLimit - 1) / Config.SizeLimit)
			sizeLine += fmt.Sprintf(" (will be sent in %d parts)", parts)
		}
	}
	replyMessage(client, v, makeCard("📥 DOWNLOADING", fmt.Sprintf(
		"📄 *File:* %s\n┃ 💾 *Size:* %s\n┃ 🎫 *Job:* %s\n┃\n┃ ⏳ Please wait...",
		filename, sizeLine, jobID)))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
	defer cancel()

	res, err := split.SplitFromURL(ctx, rawURL, filename)
	if err != nil {
		var dlErr *splitter.DownloadError
		if errors.As(err, &dlErr) {
			replyMessage(client, v, makeCard("❌ DOWNLOAD FAILED", fmt.Sprintf(
				"The server refused the download\n┃ (aria2c exit code %d).\n┃\n┃ Check the link and try again.", dlErr.Code)))
		} else {
			replyMessage(client, v, "❌ Download failed: "+err.Error())
		}
		return
	}

	if !res.NeedsSplit {
		defer os.Remove(res.FilePath)
		sendDocumentFile(client, v, res.FilePath, res.OriginalName, mimeTypeFor(res.OriginalName),
			fmt.Sprintf("✅ *%s*\n💾 %s", res.OriginalName, splitter.FormatBytes(res.FileSize)))
		recordDownload(v, rawURL, res.OriginalName, res.FileSize, 1)
		react(client, v.Info.Chat, v.Info.ID, "✅")
		return
	}

	defer splitter.CleanupParts(res.Parts)

	replyMessage(client, v, makeCard("🧩 SPLIT TRANSFER", fmt.Sprintf(
		"📄 *File:* %s\n┃ 💾 *Size:* %s\n┃ 🧩 *Parts:* %d\n┃\n┃ Parts are coming one by one.\n┃ Keep this chat open.",
		res.OriginalName, splitter.FormatBytes(res.TotalSize), len(res.Parts))))

	for i, part := range res.Parts {
		if i > 0 {
			time.Sleep(time.Duration(Config.PartDelay) * time.Second)
		}
		caption := fmt.Sprintf("🧩 *Part %d of %d*\n📄 %s", part.Number, part.Total, res.OriginalName)
		if !sendDocumentFile(client, v, part.Path, part.PartName(), "application/octet-stream", caption) {
			replyMessage(client, v, fmt.Sprintf("❌ Failed to send part %d. Transfer aborted.", part.Number))
			return
		}
		fmt.Printf("📤 [Transfer] Sent %s (%d/%d)\n", part.PartName(), part.Number, part.Total)
	}

	replyMessage(client, v, splitter.JoinInstructions(res.OriginalName, len(res.Parts)))
	recordDownload(v, rawURL, res.OriginalName, res.TotalSize, len(res.Parts))
	react(client, v.Info.Chat, v.Info.ID, "✅")
}

func recordDownload(v *events.Message, rawURL, filename string, size int64, parts int) {
	err := downloads.Add(store.DownloadRecord{
		URL:      rawURL,
		Filename: filename,
		Size:     size,
		Parts:    parts,
		User:     v.Info.Sender.ToNonAD().String(),
	})
	if err != nil {
		fmt.Printf("⚠️ [Transfer] History save failed: %v\n", err)
	}
}

// looksLikeURL is a cheap gate before handing text to the pipeline.
func looksLikeURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
