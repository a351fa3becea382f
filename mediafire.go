package main

import (
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"golang.org/x/net/html"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/types/events"
)

var mediafireClient = &http.Client{Timeout: 60 * time.Second}

// resolveMediafire scrapes the file page for the download button. The
// page serves the real link in <a id="downloadButton" href="...">.
func resolveMediafire(pageURL string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	resp, err := mediafireClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("mediafire page returned %s", resp.Status)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse mediafire page: %w", err)
	}

	link := findDownloadButton(doc)
	if link == "" {
		return "", fmt.Errorf("download button not found")
	}
	return link, nil
}

func findDownloadButton(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "a" {
		var id, href string
		for _, a := range n.Attr {
			switch a.Key {
			case "id":
				id = a.Val
			case "href":
				href = a.Val
			}
		}
		if id == "downloadButton" && strings.HasPrefix(href, "http") {
			return href
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if link := findDownloadButton(c); link != "" {
			return link
		}
	}
	return ""
}

func handleMediafire(client *whatsmeow.Client, v *events.Message, rawURL string) {
	if rawURL == "" || !strings.Contains(rawURL, "mediafire.com") {
		replyMessage(client, v, makeCard("🔥 MEDIAFIRE", fmt.Sprintf(
			"Usage:\n┃ %smediafire <file link>", Config.Prefix)))
		return
	}

	react(client, v.Info.Chat, v.Info.ID, "🔥")

	direct, err := resolveMediafire(rawURL)
	if err != nil {
		fmt.Printf("❌ [Mediafire] Resolve failed: %v\n", err)
		replyMessage(client, v, "❌ Could not resolve the Mediafire link. The file may be removed.")
		return
	}

	filename := ""
	if u, err := url.Parse(direct); err == nil {
		if name := path.Base(u.Path); name != "" && name != "/" {
			if decoded, err := url.QueryUnescape(name); err == nil {
				name = decoded
			}
			filename = name
		}
	}

	handleDirectDownload(client, v, direct, filename)
}
