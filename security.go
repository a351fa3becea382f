package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"

	"waguard/policy"
)

// inviteCache keeps each group's own invite code so the link filter
// can exempt it without hitting the network per message.
var (
	inviteCache = make(map[string]string)
	inviteMutex sync.RWMutex
)

func ownInviteCode(client *whatsmeow.Client, chat types.JID) string {
	inviteMutex.RLock()
	code, ok := inviteCache[chat.String()]
	inviteMutex.RUnlock()
	if ok {
		return code
	}
	link, err := client.GetGroupInviteLink(context.Background(), chat, false)
	if err != nil {
		return ""
	}
	code = policy.ExtractInviteCode(link)
	if code == "" {
		code = link
	}
	inviteMutex.Lock()
	inviteCache[chat.String()] = code
	inviteMutex.Unlock()
	return code
}

func buildPolicyEnv(client *whatsmeow.Client, v *events.Message) policy.Env {
	env := policy.Env{
		SenderPhone: v.Info.Sender.User,
		SenderJID:   v.Info.Sender.String(),
	}
	env.BotIsAdmin = isBotAdmin(client, v.Info.Chat)
	if env.BotIsAdmin {
		env.SenderIsAdmin = isAdmin(client, v.Info.Chat, v.Info.Sender)
		env.InviteCode = ownInviteCode(client, v.Info.Chat)
	}
	return env
}

// checkGroupPolicy runs the moderation rules on one group message.
// Returns true when the message was consumed by an enforcement action.
func checkGroupPolicy(client *whatsmeow.Client, v *events.Message) bool {
	s := groups.Get(v.Info.Chat.String())
	text := getText(v.Message)
	if text == "" {
		return false
	}
	if !s.AntiLink && !s.AntiBadWords {
		return false
	}

	env := buildPolicyEnv(client, v)

	if act := policy.EvaluateLink(env, s, text); act.Kind != policy.None {
		return applyAction(client, v, act)
	}
	if act := policy.EvaluateBadWords(env, s, text, badWordList()); act.Kind != policy.None {
		return applyAction(client, v, act)
	}
	return false
}

// handlePrivateGuards covers private chats: the anti-private redirect
// and the bad-word warn-then-block escalation. Returns true when the
// message should not reach the command dispatcher.
func handlePrivateGuards(client *whatsmeow.Client, v *events.Message) bool {
	sender := v.Info.Sender.ToNonAD().String()
	if blocklist.Contains(sender) {
		return true
	}

	text := getText(v.Message)
	if text != "" && len(policy.MatchBadWords(text, badWordList())) > 0 {
		count, _ := warnings.Bump(sender, "bad words in private chat")
		act := policy.EvaluatePrivateInfraction(count, 2)
		if act.Kind == policy.BlockPrivate {
			replyMessage(client, v, act.Message)
			if _, err := client.UpdateBlocklist(context.Background(), v.Info.Sender.ToNonAD(), events.BlocklistChangeActionBlock); err != nil {
				fmt.Printf("❌ [Guard] Block failed: %v\n", err)
				return true
			}
			blocklist.Add(sender, act.Reason)
			warnings.Reset(sender)
		} else {
			replyMessage(client, v, act.Message)
		}
		return true
	}

	ap := antiPrivate.Get()
	if ap.Enabled && !isOwner(client, v.Info.Sender) {
		// Redirect once, then drop their private messages silently.
		if antiPrivate.IsBlocked(sender) {
			return true
		}
		msg := "🤖 *This bot only works in groups.*"
		if ap.GroupLink != "" {
			msg += "\n\nJoin here: " + ap.GroupLink
		}
		replyMessage(client, v, msg)
		antiPrivate.Block(sender)
		return true
	}
	return false
}

// processGroupInfo sends welcome and goodbye notices.
func processGroupInfo(client *whatsmeow.Client, v *events.GroupInfo) {
	s := groups.Get(v.JID.String())
	if !s.Welcome {
		return
	}
	for _, jid := range v.Join {
		replyMention(client, v.JID, makeCard("👋 WELCOME", fmt.Sprintf("Welcome @%s!\n┃ Read the group rules and enjoy.", jid.User)), []string{jid.String()})
	}
	for _, jid := range v.Leave {
		replyMention(client, v.JID, makeCard("👋 GOODBYE", fmt.Sprintf("@%s left the group.", jid.User)), []string{jid.String()})
	}
	for _, jid := range v.Promote {
		replyMention(client, v.JID, makeCard("👑 PROMOTED", fmt.Sprintf("@%s is now an admin.", jid.User)), []string{jid.String()})
	}
	for _, jid := range v.Demote {
		replyMention(client, v.JID, makeCard("📉 DEMOTED", fmt.Sprintf("@%s is no longer an admin.", jid.User)), []string{jid.String()})
	}
}

// --- ⚙️ GUARD COMMANDS ---

func requireGroupAdmin(client *whatsmeow.Client, v *events.Message) bool {
	if !v.Info.IsGroup {
		replyMessage(client, v, "⚠️ Group only command.")
		return false
	}
	if !isAdmin(client, v.Info.Chat, v.Info.Sender) && !isOwner(client, v.Info.Sender) {
		replyMessage(client, v, "❌ Admins only.")
		return false
	}
	if !isBotAdmin(client, v.Info.Chat) {
		replyMessage(client, v, "⚠️ I need admin rights first.")
		return false
	}
	return true
}

func handlePolicyToggle(client *whatsmeow.Client, v *events.Message, key string, args []string) {
	if !requireGroupAdmin(client, v) {
		return
	}
	if len(args) == 0 || (args[0] != "on" && args[0] != "off") {
		replyMessage(client, v, fmt.Sprintf("⚠️ Usage: %s%s on|off", Config.Prefix, key))
		return
	}
	on := args[0] == "on"
	err := groups.Update(v.Info.Chat.String(), func(s *policy.Settings) {
		switch key {
		case "antilink":
			s.AntiLink = on
		case "antibadwords":
			s.AntiBadWords = on
		case "welcome":
			s.Welcome = on
		}
	})
	if err != nil {
		fmt.Printf("❌ [Guard] Save failed: %v\n", err)
	}
	status := "OFF 🔴"
	if on {
		status = "ON 🟢"
	}
	replyMessage(client, v, makeCard("SETTINGS", fmt.Sprintf("⚙️ *%s:* %s", strings.ToUpper(key), status)))
}

func handleAntiTime(client *whatsmeow.Client, v *events.Message, args []string) {
	if !requireGroupAdmin(client, v) {
		return
	}
	if len(args) == 0 {
		replyMessage(client, v, fmt.Sprintf("⚠️ Usage: %santitime on [close] [open] | off", Config.Prefix))
		return
	}

	switch args[0] {
	case "off":
		groups.Update(v.Info.Chat.String(), func(s *policy.Settings) {
			s.AntiTime.Enabled = false
		})
		replyMessage(client, v, makeCard("SETTINGS", "🕐 *Anti-Time:* OFF 🔴"))

	case "on":
		closeTime, openTime := "20:00", "08:00"
		if len(args) >= 3 {
			closeTime, openTime = args[1], args[2]
		}
		groups.Update(v.Info.Chat.String(), func(s *policy.Settings) {
			s.AntiTime.Enabled = true
			s.AntiTime.CloseTime = closeTime
			s.AntiTime.OpenTime = openTime
			s.AntiTime.Status = policy.StatusOpened
		})
		replyMessage(client, v, makeCard("SETTINGS", fmt.Sprintf(
			"🕐 *Anti-Time:* ON 🟢\n┃ 🌙 Close: %s\n┃ ☀️ Open: %s", closeTime, openTime)))

	default:
		replyMessage(client, v, fmt.Sprintf("⚠️ Usage: %santitime on [close] [open] | off", Config.Prefix))
	}
}

func sendGuardStatus(client *whatsmeow.Client, v *events.Message) {
	if !v.Info.IsGroup {
		replyMessage(client, v, "⚠️ Group only command.")
		return
	}
	s := groups.Get(v.Info.Chat.String())
	onOff := func(b bool) string {
		if b {
			return "ON 🟢"
		}
		return "OFF 🔴"
	}
	timeLine := onOff(s.AntiTime.Enabled)
	if s.AntiTime.Enabled {
		timeLine += fmt.Sprintf(" (%s → %s, now %s)", s.AntiTime.CloseTime, s.AntiTime.OpenTime, s.AntiTime.Status)
	}
	replyMessage(client, v, makeCard("🛡️ GROUP GUARD", fmt.Sprintf(
		"🔗 *Anti-Link:* %s\n┃ 🤬 *Anti-BadWords:* %s\n┃ 🕐 *Anti-Time:* %s\n┃ 👋 *Welcome:* %s",
		onOff(s.AntiLink), onOff(s.AntiBadWords), timeLine, onOff(s.Welcome))))
}

func handleAntiPrivate(client *whatsmeow.Client, v *events.Message, args []string) {
	if !isOwner(client, v.Info.Sender) {
		replyMessage(client, v, "❌ Owner Only")
		return
	}
	if len(args) == 0 {
		st := antiPrivate.Get()
		status := "OFF 🔴"
		if st.Enabled {
			status = "ON 🟢"
		}
		replyMessage(client, v, makeCard("SETTINGS", "🔒 *Anti-Private:* "+status))
		return
	}
	st := antiPrivate.Get()
	switch args[0] {
	case "on":
		st.Enabled = true
	case "off":
		st.Enabled = false
	case "link":
		if len(args) > 1 {
			st.GroupLink = args[1]
		}
	}
	antiPrivate.Set(st)
	replyMessage(client, v, "✅ Anti-Private updated.")
}

// scheduler tick interval.
const antiTimeInterval = 60 * time.Second

func startScheduler() {
	ticker := time.NewTicker(antiTimeInterval)
	defer ticker.Stop()
	for range ticker.C {
		if client == nil || !client.IsConnected() {
			continue
		}
		runAntiTimeSweep(client, time.Now())
	}
}

// runAntiTimeSweep walks configured groups sequentially and applies
// any due open/close transition.
func runAntiTimeSweep(client *whatsmeow.Client, now time.Time) {
	for _, jid := range groups.All() {
		s := groups.Get(jid)
		act := policy.EvaluateAntiTime(s, now)
		if act.Kind == policy.None {
			continue
		}
		chat, err := types.ParseJID(jid)
		if err != nil {
			continue
		}
		if !applyTimeAction(client, chat, act) {
			continue
		}
		newStatus := policy.StatusOpened
		if act.Kind == policy.CloseGroup {
			newStatus = policy.StatusClosed
		}
		groups.Update(jid, func(s *policy.Settings) {
			s.AntiTime.Status = newStatus
		})
	}
}
