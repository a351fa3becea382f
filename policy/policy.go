// Package policy is the detection half of the group moderation engine.
// Every evaluator is a pure function from message text plus ambient
// facts (admin flags, invite code, clock) to a tagged Action; applying
// the action against the chat platform is the caller's job.
package policy

import "fmt"

// Kind tags a moderation action.
type Kind string

const (
	None         Kind = "none"
	Warn         Kind = "warn"
	Kick         Kind = "kick"
	CloseGroup   Kind = "close_group"
	OpenGroup    Kind = "open_group"
	BlockPrivate Kind = "block_private"
)

// Action is the outcome of a rule evaluation. Message is ready to send
// as-is; Mention, when set, is the JID to tag in it.
type Action struct {
	Kind    Kind
	Reason  string
	Message string
	Mention string
}

var none = Action{Kind: None}

// TimeLock is the scheduled day/night lock sub-policy. Status records
// the last transition actually applied to the group, not the clock's
// current opinion.
type TimeLock struct {
	Enabled   bool   `json:"enabled" bson:"enabled"`
	CloseTime string `json:"closeTime" bson:"close_time"`
	OpenTime  string `json:"openTime" bson:"open_time"`
	Status    string `json:"status" bson:"status"`
}

const (
	StatusOpened = "opened"
	StatusClosed = "closed"
)

// Settings is the per-group policy record. A missing record means the
// all-enabled default.
type Settings struct {
	AntiLink     bool     `json:"antiLink" bson:"anti_link"`
	AntiBadWords bool     `json:"antiBadWords" bson:"anti_bad_words"`
	AntiPrivate  bool     `json:"antiPrivate" bson:"anti_private"`
	AntiTime     TimeLock `json:"antiTime" bson:"anti_time"`
	Welcome      bool     `json:"welcome" bson:"welcome"`
	OriginalName string   `json:"originalName" bson:"original_name"`
}

// DefaultSettings is what a group gets before an admin touches anything.
func DefaultSettings() Settings {
	return Settings{
		AntiLink:     true,
		AntiBadWords: true,
		AntiPrivate:  true,
		AntiTime: TimeLock{
			Enabled:   false,
			CloseTime: "20:00",
			OpenTime:  "08:00",
			Status:    StatusOpened,
		},
		Welcome: true,
	}
}

// Env carries the ambient facts a rule needs: live admin capability and
// the group's own current invite code (empty when unknown).
type Env struct {
	BotIsAdmin    bool
	SenderIsAdmin bool
	InviteCode    string
	SenderPhone   string
	SenderJID     string
}

// EvaluateLink applies the link filter to one group message. The
// group's own invite link is exempt; admins are always exempt; without
// admin capability the rule never fires.
func EvaluateLink(env Env, s Settings, text string) Action {
	if !s.AntiLink || !ContainsGroupLink(text) {
		return none
	}
	if !env.BotIsAdmin || env.SenderIsAdmin {
		return none
	}
	if code := ExtractInviteCode(text); code != "" && env.InviteCode != "" && code == env.InviteCode {
		// Sharing our own group is fine.
		return none
	}
	return Action{
		Kind:    Kick,
		Reason:  "posted a group or channel link",
		Message: fmt.Sprintf("❗ *Group or channel link detected*\nYou will be removed from the group\n\n@%s", env.SenderPhone),
		Mention: env.SenderJID,
	}
}

// EvaluateBadWords applies the bad-word filter to one group message.
// Matching is word-boundary aware; see MatchBadWords.
func EvaluateBadWords(env Env, s Settings, text string, words []string) Action {
	if !s.AntiBadWords || text == "" {
		return none
	}
	if !env.BotIsAdmin || env.SenderIsAdmin {
		return none
	}
	found := MatchBadWords(text, words)
	if len(found) == 0 {
		return none
	}
	return Action{
		Kind:    Kick,
		Reason:  "used forbidden words",
		Message: fmt.Sprintf("⛔ *You have been removed from the group*\n\n❌ Forbidden words are not allowed here\n\n@%s", env.SenderPhone),
		Mention: env.SenderJID,
	}
}

// EvaluatePrivateInfraction is the private-chat escalation path: below
// the threshold an infraction earns a warning, at or above it the
// sender gets blocked. count includes the current infraction.
func EvaluatePrivateInfraction(count, threshold int) Action {
	if threshold > 0 && count >= threshold {
		return Action{
			Kind:    BlockPrivate,
			Reason:  "repeated forbidden words in private chat",
			Message: "⛔ *You have been blocked*\n\nYou kept using forbidden words after being warned.",
		}
	}
	return Action{
		Kind:    Warn,
		Reason:  "forbidden words in private chat",
		Message: fmt.Sprintf("⚠️ *Warning %d/%d*\n\nThat language is not allowed here. Next time you will be blocked.", count, threshold),
	}
}
