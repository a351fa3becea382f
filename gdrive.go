package main

import (
	"fmt"
	"regexp"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/types/events"
)

// Accepted Google Drive link shapes. The file id is the capture group.
var gdrivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`drive\.google\.com/file/d/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`drive\.google\.com/open\?id=([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`drive\.google\.com/uc\?(?:export=download&)?id=([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`drive\.usercontent\.google\.com/download\?id=([a-zA-Z0-9_-]+)`),
}

func extractDriveID(rawURL string) string {
	for _, re := range gdrivePatterns {
		if m := re.FindStringSubmatch(rawURL); m != nil {
			return m[1]
		}
	}
	return ""
}

// driveDownloadURL builds the direct usercontent endpoint. confirm=t
// skips the virus-scan interstitial on big files.
func driveDownloadURL(fileID string) string {
	return fmt.Sprintf("https://drive.usercontent.google.com/download?id=%s&export=download&confirm=t", fileID)
}

func handleGDrive(client *whatsmeow.Client, v *events.Message, rawURL string) {
	if rawURL == "" {
		replyMessage(client, v, makeCard("☁️ GOOGLE DRIVE", fmt.Sprintf(
			"Usage:\n┃ %sgdrive <share link>\n┃\n┃ The file must be shared\n┃ with \"anyone with the link\".", Config.Prefix)))
		return
	}

	fileID := extractDriveID(rawURL)
	if fileID == "" {
		replyMessage(client, v, "❌ That does not look like a Google Drive link.")
		return
	}

	react(client, v.Info.Chat, v.Info.ID, "☁️")
	handleDirectDownload(client, v, driveDownloadURL(fileID), "")
}
