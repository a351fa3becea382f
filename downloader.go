package main

import (
	"net/url"
	"regexp"
	"strings"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/types/events"
)

// ==================== SOCIAL DOWNLOADERS ====================

func handleTikTok(client *whatsmeow.Client, v *events.Message, rawURL string) {
	if rawURL == "" {
		replyMessage(client, v, makeCard("🎵 TIKTOK", "Usage:\n┃ "+Config.Prefix+"tiktok <url>"))
		return
	}

	react(client, v.Info.Chat, v.Info.ID, "🎵")

	type R struct {
		Code int `json:"code"`
		Data struct {
			Play   string `json:"play"`
			WMPlay string `json:"wmplay"`
			Title  string `json:"title"`
		} `json:"data"`
	}
	var r R
	if err := getJson("https://www.tikwm.com/api/?url="+url.QueryEscape(strings.TrimSpace(rawURL)), &r); err != nil {
		replyMessage(client, v, "❌ API connection error.")
		return
	}

	play := r.Data.Play
	if play == "" {
		play = r.Data.WMPlay
	}
	if r.Code != 0 || play == "" {
		replyMessage(client, v, "❌ Could not fetch that TikTok.")
		return
	}
	sendVideo(client, v, play, "🎵 *"+r.Data.Title+"*\n✅ Downloaded")
}

func handleFacebook(client *whatsmeow.Client, v *events.Message, rawURL string) {
	if rawURL == "" {
		replyMessage(client, v, makeCard("📘 FACEBOOK", "Usage:\n┃ "+Config.Prefix+"fb <url>"))
		return
	}

	react(client, v.Info.Chat, v.Info.ID, "📘")

	type R struct {
		BK9 struct {
			HD string `json:"HD"`
			SD string `json:"SD"`
		} `json:"BK9"`
		Status bool `json:"status"`
	}
	var r R
	getJson("https://bk9.fun/downloader/facebook?url="+url.QueryEscape(rawURL), &r)

	link := r.BK9.HD
	if link == "" {
		link = r.BK9.SD
	}
	if !r.Status || link == "" {
		replyMessage(client, v, "❌ Could not fetch that video.")
		return
	}
	sendVideo(client, v, link, "📘 *Facebook Video*\n✅ Downloaded")
}

func handleInstagram(client *whatsmeow.Client, v *events.Message, rawURL string) {
	if rawURL == "" {
		replyMessage(client, v, makeCard("📸 INSTAGRAM", "Usage:\n┃ "+Config.Prefix+"ig <url>"))
		return
	}

	react(client, v.Info.Chat, v.Info.ID, "📸")

	type R struct {
		BK9 []struct {
			URL  string `json:"url"`
			Type string `json:"type"`
		} `json:"BK9"`
		Status bool `json:"status"`
	}
	var r R
	getJson("https://bk9.fun/downloader/instagram?url="+url.QueryEscape(rawURL), &r)

	if !r.Status || len(r.BK9) == 0 {
		replyMessage(client, v, "❌ Could not fetch that post.")
		return
	}
	item := r.BK9[0]
	if item.Type == "image" {
		sendImage(client, v, item.URL, "📸 *Instagram*\n✅ Downloaded")
	} else {
		sendVideo(client, v, item.URL, "📸 *Instagram*\n✅ Downloaded")
	}
}

func handlePinterest(client *whatsmeow.Client, v *events.Message, rawURL string) {
	if rawURL == "" {
		replyMessage(client, v, makeCard("📌 PINTEREST", "Usage:\n┃ "+Config.Prefix+"pin <url>"))
		return
	}

	react(client, v.Info.Chat, v.Info.ID, "📌")

	type R struct {
		BK9 struct {
			URL string `json:"url"`
		} `json:"BK9"`
		Status bool `json:"status"`
	}
	var r R
	getJson("https://bk9.fun/downloader/pinterest?url="+url.QueryEscape(rawURL), &r)

	if !r.Status || r.BK9.URL == "" {
		replyMessage(client, v, "❌ Could not fetch that pin.")
		return
	}
	if strings.Contains(r.BK9.URL, ".mp4") {
		sendVideo(client, v, r.BK9.URL, "📌 *Pinterest*\n✅ Downloaded")
	} else {
		sendImage(client, v, r.BK9.URL, "📌 *Pinterest*\n✅ Downloaded")
	}
}

func handleYouTube(client *whatsmeow.Client, v *events.Message, rawURL, format string) {
	if rawURL == "" {
		replyMessage(client, v, makeCard("📺 YOUTUBE", "Usage:\n┃ "+Config.Prefix+"ytmp4 <url>\n┃ "+Config.Prefix+"ytmp3 <url>"))
		return
	}

	react(client, v.Info.Chat, v.Info.ID, "📺")
	replyMessage(client, v, "⏳ *Downloading...*")

	type R struct {
		BK9 struct {
			Title string `json:"title"`
			Mp4   string `json:"mp4"`
			Mp3   string `json:"mp3"`
		} `json:"BK9"`
		Status bool `json:"status"`
	}
	var r R
	getJson("https://bk9.fun/downloader/youtube?url="+url.QueryEscape(rawURL), &r)

	if format == "mp3" {
		if r.BK9.Mp3 == "" {
			replyMessage(client, v, "❌ YouTube MP3 failed.")
			return
		}
		sendDocument(client, v, r.BK9.Mp3, r.BK9.Title+".mp3", "audio/mpeg")
		return
	}
	if r.BK9.Mp4 == "" {
		replyMessage(client, v, "❌ YouTube MP4 failed.")
		return
	}
	sendVideo(client, v, r.BK9.Mp4, "📺 *"+r.BK9.Title+"*\n✅ Downloaded")
}

// ==================== URL AUTO-ROUTING ====================

// urlRoutes lets a bare link trigger the right downloader without a
// command. First match wins.
var urlRoutes = []struct {
	pattern *regexp.Regexp
	handler func(*whatsmeow.Client, *events.Message, string)
}{
	{regexp.MustCompile(`(?i)(vm\.|vt\.|www\.)?tiktok\.com/`), handleTikTok},
	{regexp.MustCompile(`(?i)(facebook\.com|fb\.watch)/`), handleFacebook},
	{regexp.MustCompile(`(?i)instagram\.com/`), handleInstagram},
	{regexp.MustCompile(`(?i)(pinterest\.com|pin\.it)/`), handlePinterest},
	{regexp.MustCompile(`(?i)drive\.google\.com/`), handleGDrive},
	{regexp.MustCompile(`(?i)mediafire\.com/`), handleMediafire},
}

// routeURL dispatches a bare URL message. Returns true when a
// downloader claimed it.
func routeURL(client *whatsmeow.Client, v *events.Message, body string) bool {
	if !looksLikeURL(body) || strings.ContainsAny(body, " \n") {
		return false
	}
	for _, route := range urlRoutes {
		if route.pattern.MatchString(body) {
			go route.handler(client, v, body)
			return true
		}
	}
	return false
}
