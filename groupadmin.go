package main

import (
	"context"
	"fmt"

	"go.mau.fi/whatsmeow"
	waProto "go.mau.fi/whatsmeow/binary/proto"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"google.golang.org/protobuf/proto"

	"waguard/policy"
)

func groupAction(client *whatsmeow.Client, v *events.Message, action string) {
	if !requireGroupAdmin(client, v) {
		return
	}
	target := getTarget(v.Message)
	if target == nil {
		replyMessage(client, v, "⚠️ Reply to or mention a user.")
		return
	}

	var change whatsmeow.ParticipantChange
	switch action {
	case "remove":
		change = whatsmeow.ParticipantChangeRemove
	case "promote":
		change = whatsmeow.ParticipantChangePromote
	default:
		change = whatsmeow.ParticipantChangeDemote
	}

	if _, err := client.UpdateGroupParticipants(context.Background(), v.Info.Chat, []types.JID{*target}, change); err != nil {
		replyMessage(client, v, "❌ Action failed: "+err.Error())
		return
	}
	replyMessage(client, v, fmt.Sprintf("✅ Done: %s @%s", action, target.User))
}

func groupAdd(client *whatsmeow.Client, v *events.Message, args []string) {
	if !requireGroupAdmin(client, v) || len(args) == 0 {
		return
	}
	jid := types.NewJID(args[0], types.DefaultUserServer)
	if _, err := client.UpdateGroupParticipants(context.Background(), v.Info.Chat, []types.JID{jid}, whatsmeow.ParticipantChangeAdd); err != nil {
		replyMessage(client, v, "❌ Add failed: "+err.Error())
		return
	}
	replyMessage(client, v, "✅ Added "+args[0])
}

func groupTagAll(client *whatsmeow.Client, v *events.Message, text string) {
	if !v.Info.IsGroup || !isAdmin(client, v.Info.Chat, v.Info.Sender) {
		return
	}
	info, err := client.GetGroupInfo(context.Background(), v.Info.Chat)
	if err != nil {
		return
	}
	mentions := []string{}
	out := "📣 *TAG ALL*\n" + text + "\n"
	for _, p := range info.Participants {
		mentions = append(mentions, p.JID.String())
		out += "@" + p.JID.User + "\n"
	}
	client.SendMessage(context.Background(), v.Info.Chat, &waProto.Message{
		ExtendedTextMessage: &waProto.ExtendedTextMessage{
			Text:        proto.String(out),
			ContextInfo: &waProto.ContextInfo{MentionedJID: mentions},
		},
	})
}

func groupHideTag(client *whatsmeow.Client, v *events.Message, text string) {
	if !v.Info.IsGroup || !isAdmin(client, v.Info.Chat, v.Info.Sender) {
		return
	}
	info, err := client.GetGroupInfo(context.Background(), v.Info.Chat)
	if err != nil {
		return
	}
	mentions := []string{}
	for _, p := range info.Participants {
		mentions = append(mentions, p.JID.String())
	}
	client.SendMessage(context.Background(), v.Info.Chat, &waProto.Message{
		ExtendedTextMessage: &waProto.ExtendedTextMessage{
			Text:        proto.String(text),
			ContextInfo: &waProto.ContextInfo{MentionedJID: mentions},
		},
	})
}

func handleGroupCmd(client *whatsmeow.Client, v *events.Message, args []string) {
	if !requireGroupAdmin(client, v) || len(args) == 0 {
		return
	}
	chat := v.Info.Chat

	switch args[0] {
	case "close":
		client.SetGroupAnnounce(context.Background(), chat, true)
		// A manual close overrides the schedule until the next window.
		groups.Update(chat.String(), func(s *policy.Settings) {
			s.AntiTime.Status = policy.StatusClosed
		})
		reply(client, chat, "🔒 Group Closed")

	case "open":
		client.SetGroupAnnounce(context.Background(), chat, false)
		groups.Update(chat.String(), func(s *policy.Settings) {
			s.AntiTime.Status = policy.StatusOpened
		})
		reply(client, chat, "🔓 Group Opened")

	case "link":
		code, err := client.GetGroupInviteLink(context.Background(), chat, false)
		if err != nil {
			replyMessage(client, v, "❌ Could not fetch the link.")
			return
		}
		reply(client, chat, "🔗 "+code)

	case "revoke":
		if _, err := client.GetGroupInviteLink(context.Background(), chat, true); err != nil {
			replyMessage(client, v, "❌ Revoke failed.")
			return
		}
		inviteMutex.Lock()
		delete(inviteCache, chat.String())
		inviteMutex.Unlock()
		reply(client, chat, "🔄 Link Revoked")

	case "name":
		if len(args) < 2 {
			return
		}
		name := ""
		for _, a := range args[1:] {
			if name != "" {
				name += " "
			}
			name += a
		}
		if err := client.SetGroupName(context.Background(), chat, name); err != nil {
			replyMessage(client, v, "❌ Rename failed.")
			return
		}
		groups.Update(chat.String(), func(s *policy.Settings) {
			s.OriginalName = name
		})
		reply(client, chat, "✏️ Group renamed.")
	}
}
