package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.mau.fi/whatsmeow"
	waProto "go.mau.fi/whatsmeow/binary/proto"
	"go.mau.fi/whatsmeow/types/events"
	"google.golang.org/protobuf/proto"
)

// AISession is the per-user chat memory kept in Redis. Without Redis
// every prompt starts a fresh conversation.
type AISession struct {
	History     string `json:"history"`
	LastMsgID   string `json:"last_msg_id"`
	LastUpdated int64  `json:"last_updated"`
}

const aiSessionTTL = 30 * time.Minute

func handleAI(client *whatsmeow.Client, v *events.Message, query string, cmd string) {
	if query == "" {
		replyMessage(client, v, "⚠️ Please provide a prompt.")
		return
	}
	processAIConversation(client, v, query, cmd, false)
}

// handleAIReply continues a conversation when the user replies to the
// bot's last AI answer. Returns true when the message was handled.
func handleAIReply(client *whatsmeow.Client, v *events.Message) bool {
	ext := v.Message.GetExtendedTextMessage()
	if ext == nil || ext.ContextInfo == nil || ext.ContextInfo.StanzaID == nil {
		return false
	}
	if rdb == nil {
		return false
	}

	senderID := v.Info.Sender.ToNonAD().String()
	val, err := rdb.Get(context.Background(), "ai_session:"+senderID).Result()
	if err != nil {
		return false
	}
	var session AISession
	if json.Unmarshal([]byte(val), &session) != nil {
		return false
	}
	if session.LastMsgID != ext.ContextInfo.GetStanzaID() {
		return false
	}

	processAIConversation(client, v, getText(v.Message), "ai", true)
	return true
}

func processAIConversation(client *whatsmeow.Client, v *events.Message, query, cmd string, isReply bool) {
	react(client, v.Info.Chat, v.Info.ID, "🧠")

	senderID := v.Info.Sender.ToNonAD().String()
	history := ""

	if rdb != nil {
		if val, err := rdb.Get(context.Background(), "ai_session:"+senderID).Result(); err == nil {
			var session AISession
			json.Unmarshal([]byte(val), &session)
			if time.Now().Unix()-session.LastUpdated < int64(aiSessionTTL.Seconds()) {
				history = session.History
			}
		}
	}

	// Keep the prompt URL-safe and bounded.
	if len(history) > 2000 {
		history = history[len(history)-2000:]
	}

	aiName := Config.BotName + " AI"
	if strings.ToLower(cmd) == "gpt" {
		aiName = "GPT-4"
	}

	fullPrompt := fmt.Sprintf(
		"System: You are %s. You are helpful and precise. Respond in the user's language.\n%s\nUser: %s\nAI:",
		aiName, history, query)

	models := []string{"openai", "mistral", "karma"}
	var finalResponse string
	ok := false

	for _, model := range models {
		apiURL := fmt.Sprintf("https://text.pollinations.ai/%s?model=%s", url.QueryEscape(fullPrompt), model)
		httpClient := http.Client{Timeout: 30 * time.Second}
		resp, err := httpClient.Get(apiURL)
		if err != nil {
			continue
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		res := string(body)
		if strings.HasPrefix(res, "{") && strings.Contains(res, "error") {
			continue
		}
		finalResponse = res
		ok = true
		break
	}

	if !ok {
		replyMessage(client, v, "🤖 Brain Overload! Try again.")
		return
	}

	respPtr, err := client.SendMessage(context.Background(), v.Info.Chat, &waProto.Message{
		ExtendedTextMessage: &waProto.ExtendedTextMessage{
			Text: proto.String(finalResponse),
			ContextInfo: &waProto.ContextInfo{
				StanzaID:      proto.String(v.Info.ID),
				Participant:   proto.String(v.Info.Sender.String()),
				QuotedMessage: v.Message,
			},
		},
	})
	if err != nil {
		return
	}

	if rdb != nil {
		session := AISession{
			History:     fmt.Sprintf("%s\nUser: %s\nAI: %s", history, query, finalResponse),
			LastMsgID:   respPtr.ID,
			LastUpdated: time.Now().Unix(),
		}
		if data, err := json.Marshal(session); err == nil {
			rdb.Set(context.Background(), "ai_session:"+senderID, data, aiSessionTTL)
		}
	}

	if !isReply {
		react(client, v.Info.Chat, v.Info.ID, "✅")
	}
}
