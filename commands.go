package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.mau.fi/whatsmeow"
	waProto "go.mau.fi/whatsmeow/binary/proto"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"google.golang.org/protobuf/proto"

	"waguard/splitter"
)

// --- 📡 MAIN MESSAGE PIPELINE ---

func processMessage(client *whatsmeow.Client, v *events.Message) {
	if v.Info.IsFromMe {
		return
	}
	if v.Info.Chat.String() == "status@broadcast" {
		return
	}

	users.Touch(v.Info.Sender.ToNonAD().String(), v.Info.PushName)

	// 1. PRIVATE CHAT GUARDS
	if !v.Info.IsGroup {
		if handlePrivateGuards(client, v) {
			return
		}
		if handleAIReply(client, v) {
			return
		}
	}

	// 2. GROUP ENFORCEMENT
	if v.Info.IsGroup {
		if checkGroupPolicy(client, v) {
			return
		}
	}

	// 3. COMMAND PROCESSING
	body := strings.TrimSpace(getText(v.Message))
	if body == "" {
		return
	}

	if routeURL(client, v, body) {
		return
	}

	cmd := body
	if strings.HasPrefix(cmd, Config.Prefix) {
		cmd = cmd[len(Config.Prefix):]
	}
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return
	}
	cmd = strings.ToLower(fields[0])
	args := fields[1:]
	fullArgs := strings.Join(args, " ")

	fmt.Printf("📩 CMD: %s | Chat: %s\n", cmd, v.Info.Chat.User)

	switch cmd {
	case "menu", "help", "list":
		react(client, v.Info.Chat, v.Info.ID, "📜")
		sendMenu(client, v.Info.Chat)

	case "ping":
		react(client, v.Info.Chat, v.Info.ID, "⚡")
		sendPing(client, v.Info.Chat)

	case "id":
		react(client, v.Info.Chat, v.Info.ID, "🆔")
		sendID(client, v)

	case "owner":
		react(client, v.Info.Chat, v.Info.ID, "👑")
		sendOwner(client, v.Info.Chat, v.Info.Sender)

	case "stats":
		sendStats(client, v.Info.Chat)

	case "history":
		sendHistory(client, v)

	case "dl", "download":
		go handleDirectDownload(client, v, fullArgs, "")

	case "gdrive", "gd":
		go handleGDrive(client, v, fullArgs)

	case "mediafire", "mf":
		go handleMediafire(client, v, fullArgs)

	case "tiktok", "tt":
		handleTikTok(client, v, fullArgs)
	case "fb", "facebook":
		handleFacebook(client, v, fullArgs)
	case "insta", "ig":
		handleInstagram(client, v, fullArgs)
	case "pin", "pinterest":
		handlePinterest(client, v, fullArgs)
	case "ytmp3":
		handleYouTube(client, v, fullArgs, "mp3")
	case "ytmp4":
		handleYouTube(client, v, fullArgs, "mp4")

	case "ai", "gpt":
		handleAI(client, v, fullArgs, cmd)

	case "antilink":
		handlePolicyToggle(client, v, "antilink", args)
	case "antibadwords":
		handlePolicyToggle(client, v, "antibadwords", args)
	case "welcome":
		handlePolicyToggle(client, v, "welcome", args)
	case "antitime":
		handleAntiTime(client, v, args)
	case "guard", "settings":
		sendGuardStatus(client, v)

	case "antiprivate":
		handleAntiPrivate(client, v, args)

	case "kick":
		groupAction(client, v, "remove")
	case "add":
		groupAdd(client, v, args)
	case "promote":
		groupAction(client, v, "promote")
	case "demote":
		groupAction(client, v, "demote")
	case "tagall":
		groupTagAll(client, v, fullArgs)
	case "hidetag":
		groupHideTag(client, v, fullArgs)
	case "group":
		handleGroupCmd(client, v, args)
	case "del", "delete":
		deleteMsg(client, v.Info.Chat, v.Message)

	case "unblock":
		handleUnblock(client, v, args)
	case "resetwarn":
		handleResetWarn(client, v)
	}
}

// --- 🛠️ HELPER FUNCTIONS ---

func react(client *whatsmeow.Client, chat types.JID, msgID types.MessageID, emoji string) {
	client.SendMessage(context.Background(), chat, &waProto.Message{
		ReactionMessage: &waProto.ReactionMessage{
			Key: &waProto.MessageKey{
				RemoteJID: proto.String(chat.String()),
				ID:        proto.String(msgID),
				FromMe:    proto.Bool(true),
			},
			Text:              proto.String(emoji),
			SenderTimestampMS: proto.Int64(time.Now().UnixMilli()),
		},
	})
}

func makeCard(title, body string) string {
	return fmt.Sprintf("╭━━━〔 %s 〕━━━┈\n┃ %s\n╰━━━━━━━━━━━━━━━━━━┈", title, body)
}

// mentionMessage builds a text message whose @tags are live mentions.
func mentionMessage(text string, mentions []string) *waProto.Message {
	return &waProto.Message{
		ExtendedTextMessage: &waProto.ExtendedTextMessage{
			Text:        proto.String(text),
			ContextInfo: &waProto.ContextInfo{MentionedJID: mentions},
		},
	}
}

func replyMention(client *whatsmeow.Client, chat types.JID, text string, mentions []string) {
	client.SendMessage(context.Background(), chat, mentionMessage(text, mentions))
}

func reply(client *whatsmeow.Client, chat types.JID, text string) {
	client.SendMessage(context.Background(), chat, &waProto.Message{
		ExtendedTextMessage: &waProto.ExtendedTextMessage{Text: proto.String(text)},
	})
}

// replyMessage quotes the triggering message.
func replyMessage(client *whatsmeow.Client, v *events.Message, text string) {
	client.SendMessage(context.Background(), v.Info.Chat, &waProto.Message{
		ExtendedTextMessage: &waProto.ExtendedTextMessage{
			Text: proto.String(text),
			ContextInfo: &waProto.ContextInfo{
				StanzaID:      proto.String(v.Info.ID),
				Participant:   proto.String(v.Info.Sender.String()),
				QuotedMessage: v.Message,
			},
		},
	})
}

func getText(m *waProto.Message) string {
	if m == nil {
		return ""
	}
	if m.Conversation != nil {
		return m.GetConversation()
	}
	if m.ExtendedTextMessage != nil {
		return m.ExtendedTextMessage.GetText()
	}
	if m.ImageMessage != nil {
		return m.ImageMessage.GetCaption()
	}
	if m.VideoMessage != nil {
		return m.VideoMessage.GetCaption()
	}
	return ""
}

func getJson(url string, target interface{}) error {
	r, err := http.Get(url)
	if err != nil {
		return err
	}
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

func isAdmin(client *whatsmeow.Client, chat, user types.JID) bool {
	info, err := client.GetGroupInfo(context.Background(), chat)
	if err != nil {
		return false
	}
	for _, p := range info.Participants {
		if p.JID.User == user.User && (p.IsAdmin || p.IsSuperAdmin) {
			return true
		}
	}
	return false
}

func isBotAdmin(client *whatsmeow.Client, chat types.JID) bool {
	if client.Store.ID == nil {
		return false
	}
	return isAdmin(client, chat, *client.Store.ID)
}

func isOwner(client *whatsmeow.Client, user types.JID) bool {
	if client.Store.ID != nil && user.User == client.Store.ID.User {
		return true
	}
	return user.User == Config.OwnerNumber
}

func getTarget(m *waProto.Message) *types.JID {
	if m.ExtendedTextMessage == nil {
		return nil
	}
	c := m.ExtendedTextMessage.ContextInfo
	if c == nil {
		return nil
	}
	if len(c.MentionedJID) > 0 {
		j, err := types.ParseJID(c.MentionedJID[0])
		if err == nil {
			return &j
		}
	}
	if c.Participant != nil {
		j, err := types.ParseJID(*c.Participant)
		if err == nil {
			return &j
		}
	}
	return nil
}

func deleteMsg(client *whatsmeow.Client, chat types.JID, msg *waProto.Message) {
	if msg.ExtendedTextMessage == nil {
		return
	}
	ctx := msg.ExtendedTextMessage.ContextInfo
	if ctx == nil || ctx.StanzaID == nil {
		return
	}
	target, _ := types.ParseJID(ctx.GetParticipant())
	client.SendMessage(context.Background(), chat, client.BuildRevoke(chat, target, ctx.GetStanzaID()))
}

// --- 📋 INFO COMMANDS ---

func sendMenu(client *whatsmeow.Client, chat types.JID) {
	uptime := time.Since(startTime).Round(time.Second)
	p := Config.Prefix

	menu := makeCard("⋆ "+Config.BotName+" ⋆", fmt.Sprintf(`
👋 *Assalam-o-Alaikum*
👑 *Owner:* %s
⏳ *Uptime:* %s

╭━━〔 *BIG FILES* 〕━━┈
┃ 🔸 *%sdl <url>*
┃ 🔸 *%sgdrive <url>*
┃ 🔸 *%smediafire <url>*
┃ 🔸 *%shistory*
╰━━━━━━━━━━━━━━━━━━┈

╭━━〔 *DOWNLOADERS* 〕━━┈
┃ 🔸 *%sfb*
┃ 🔸 *%sig*
┃ 🔸 *%spin*
┃ 🔸 *%stiktok*
┃ 🔸 *%sytmp3*
┃ 🔸 *%sytmp4*
╰━━━━━━━━━━━━━━━━━━┈

╭━━〔 *GROUP GUARD* 〕━━┈
┃ 🔸 *%santilink on|off*
┃ 🔸 *%santibadwords on|off*
┃ 🔸 *%santitime on 20:00 08:00*
┃ 🔸 *%swelcome on|off*
┃ 🔸 *%sguard*
╰━━━━━━━━━━━━━━━━━━┈

╭━━〔 *GROUP* 〕━━┈
┃ 🔸 *%sadd*
┃ 🔸 *%sdemote*
┃ 🔸 *%sgroup open|close|link*
┃ 🔸 *%shidetag*
┃ 🔸 *%skick*
┃ 🔸 *%spromote*
┃ 🔸 *%stagall*
╰━━━━━━━━━━━━━━━━━━┈

╭━━〔 *TOOLS* 〕━━┈
┃ 🔸 *%sai*
┃ 🔸 *%sid*
┃ 🔸 *%sowner*
┃ 🔸 *%sping*
┃ 🔸 *%sstats*
╰━━━━━━━━━━━━━━━━━━┈`,
		Config.OwnerName, uptime,
		p, p, p, p,
		p, p, p, p, p, p,
		p, p, p, p, p,
		p, p, p, p, p, p, p,
		p, p, p, p, p))

	client.SendMessage(context.Background(), chat, &waProto.Message{Conversation: proto.String(menu)})
}

func sendPing(client *whatsmeow.Client, chat types.JID) {
	start := time.Now()
	time.Sleep(10 * time.Millisecond)
	ms := time.Since(start).Milliseconds()
	uptime := time.Since(startTime).Round(time.Second)
	reply(client, chat, makeCard("✨ PING", fmt.Sprintf("⚡ *Speed:* %d ms\n┃ ⏱ *Uptime:* %s", ms, uptime)))
}

func sendID(client *whatsmeow.Client, v *events.Message) {
	chatType := "Private"
	if v.Info.IsGroup {
		chatType = "Group"
	}
	reply(client, v.Info.Chat, makeCard("ID INFO", fmt.Sprintf("👤 *User:* `%s`\n┃ 👥 *Chat:* `%s`\n┃ 🏷️ *Type:* %s",
		v.Info.Sender.User, v.Info.Chat.User, chatType)))
}

func sendOwner(client *whatsmeow.Client, chat types.JID, sender types.JID) {
	res := "❌ You are NOT the Owner."
	if isOwner(client, sender) {
		res = "👑 You are the OWNER!"
	}
	bot := "?"
	if client.Store.ID != nil {
		bot = client.Store.ID.User
	}
	reply(client, chat, makeCard("OWNER VERIFICATION", fmt.Sprintf("🤖 Bot: %s\n┃ 👤 You: %s\n┃\n┃ %s", bot, sender.User, res)))
}

func sendStats(client *whatsmeow.Client, chat types.JID) {
	st := downloads.Stats()
	reply(client, chat, makeCard("📊 STATS", fmt.Sprintf(
		"👥 *Users:* %d\n┃ 📦 *Downloads:* %d\n┃ 🧩 *Split:* %d\n┃ 💾 *Served:* %s\n┃ ⏳ *Uptime:* %s",
		users.Count(), st.Total, st.Split, splitter.FormatBytes(st.TotalBytes),
		time.Since(startTime).Round(time.Second))))
}

func sendHistory(client *whatsmeow.Client, v *events.Message) {
	recs := downloads.ForUser(v.Info.Sender.ToNonAD().String(), 5)
	if len(recs) == 0 {
		replyMessage(client, v, "📂 No downloads yet.")
		return
	}
	body := "📜 *Your last downloads:*"
	for _, r := range recs {
		body += fmt.Sprintf("\n┃ 🔸 %s (%s)", r.Filename, splitter.FormatBytes(r.Size))
	}
	replyMessage(client, v, makeCard("HISTORY", body))
}

func handleUnblock(client *whatsmeow.Client, v *events.Message, args []string) {
	if !isOwner(client, v.Info.Sender) || len(args) == 0 {
		return
	}
	jid := types.NewJID(strings.TrimPrefix(args[0], "+"), types.DefaultUserServer)
	if _, err := client.UpdateBlocklist(context.Background(), jid, events.BlocklistChangeActionUnblock); err != nil {
		replyMessage(client, v, "❌ Unblock failed: "+err.Error())
		return
	}
	blocklist.Remove(jid.String())
	warnings.Reset(jid.String())
	antiPrivate.Unblock(jid.String())
	replyMessage(client, v, "✅ Unblocked "+jid.User)
}

func handleResetWarn(client *whatsmeow.Client, v *events.Message) {
	if v.Info.IsGroup && !isAdmin(client, v.Info.Chat, v.Info.Sender) && !isOwner(client, v.Info.Sender) {
		return
	}
	target := getTarget(v.Message)
	if target == nil {
		replyMessage(client, v, "⚠️ Reply to or mention a user.")
		return
	}
	warnings.Reset(target.ToNonAD().String())
	replyMessage(client, v, "✅ Warnings cleared for @"+target.User)
}
