package main

import (
	"context"
	"fmt"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"

	"waguard/policy"
)

// applyAction executes a moderation verdict against the group. Admin
// capability is re-checked right before acting because it can be
// revoked between detection and enforcement. Returns true when the
// offending message was dealt with.
func applyAction(client *whatsmeow.Client, v *events.Message, act policy.Action) bool {
	if !isBotAdmin(client, v.Info.Chat) {
		fmt.Printf("⚠️ [Guard] Lost admin in %s, skipping %s\n", v.Info.Chat.User, act.Kind)
		return false
	}

	switch act.Kind {
	case policy.Kick:
		if _, err := client.SendMessage(context.Background(), v.Info.Chat,
			client.BuildRevoke(v.Info.Chat, v.Info.Sender, v.Info.ID)); err != nil {
			fmt.Printf("❌ [Guard] Delete failed: %v\n", err)
		}
		if _, err := client.UpdateGroupParticipants(context.Background(), v.Info.Chat,
			[]types.JID{v.Info.Sender}, whatsmeow.ParticipantChangeRemove); err != nil {
			fmt.Printf("❌ [Guard] Kick failed: %v\n", err)
			return false
		}
		sendActionNotice(client, v.Info.Chat, act)
		fmt.Printf("👢 [Guard] Kicked %s: %s\n", v.Info.Sender.User, act.Reason)
		return true

	case policy.Warn:
		sendActionNotice(client, v.Info.Chat, act)
		return true
	}
	return false
}

// applyTimeAction flips the group's announce flag for the day/night
// lock and marks the title while the lock holds. Returns true only
// when the platform accepted the announce change, so a failed flip is
// retried on the next tick. The title rename is best-effort.
func applyTimeAction(client *whatsmeow.Client, chat types.JID, act policy.Action) bool {
	if !isBotAdmin(client, chat) {
		return false
	}
	announce := act.Kind == policy.CloseGroup
	if err := client.SetGroupAnnounce(context.Background(), chat, announce); err != nil {
		fmt.Printf("❌ [Guard] SetGroupAnnounce(%v) failed for %s: %v\n", announce, chat.User, err)
		return false
	}
	if announce {
		lockGroupTitle(client, chat)
	} else {
		restoreGroupTitle(client, chat)
	}
	if act.Message != "" {
		reply(client, chat, act.Message)
	}
	fmt.Printf("🕐 [Guard] %s → %s\n", chat.User, act.Kind)
	return true
}

// lockGroupTitle caches the current title and appends the lock marker.
func lockGroupTitle(client *whatsmeow.Client, chat types.JID) {
	info, err := client.GetGroupInfo(context.Background(), chat)
	if err != nil {
		fmt.Printf("❌ [Guard] GetGroupInfo failed for %s: %v\n", chat.User, err)
		return
	}
	name := info.Name
	if name == "" || policy.IsLockedTitle(name) {
		return
	}
	groups.Update(chat.String(), func(s *policy.Settings) {
		s.OriginalName = name
	})
	if err := client.SetGroupName(context.Background(), chat, policy.LockedTitle(name)); err != nil {
		fmt.Printf("❌ [Guard] Title lock failed for %s: %v\n", chat.User, err)
	}
}

// restoreGroupTitle puts the cached pre-lock title back.
func restoreGroupTitle(client *whatsmeow.Client, chat types.JID) {
	s := groups.Get(chat.String())
	if s.OriginalName == "" {
		return
	}
	if err := client.SetGroupName(context.Background(), chat, s.OriginalName); err != nil {
		fmt.Printf("❌ [Guard] Title restore failed for %s: %v\n", chat.User, err)
	}
}

func sendActionNotice(client *whatsmeow.Client, chat types.JID, act policy.Action) {
	if act.Message == "" {
		return
	}
	if act.Mention == "" {
		reply(client, chat, act.Message)
		return
	}
	replyMention(client, chat, act.Message, []string{act.Mention})
}
