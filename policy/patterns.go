package policy

import (
	"regexp"
	"strings"
	"sync"
)

// Known messaging-platform and social invite/profile link shapes. The
// set is fixed; swapping the rule set means swapping this data, not the
// evaluators.
var linkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?chat\.whatsapp\.com/[a-zA-Z0-9]+`),
	regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?whatsapp\.com/channel/[a-zA-Z0-9?=._-]+`),
	regexp.MustCompile(`(?i)(?:https?://)?t\.me/[a-zA-Z0-9_]+`),
	regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?discord\.gg/[a-zA-Z0-9]+`),
	regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?instagram\.com/[a-zA-Z0-9_.]+`),
	regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?facebook\.com/groups/[a-zA-Z0-9]+`),
	regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?tiktok\.com/@?[a-zA-Z0-9_.]+`),
	regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?youtube\.com/(?:channel|c|user|@)[a-zA-Z0-9_-]+`),
	regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?youtu\.be/[a-zA-Z0-9_-]+`),
	regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?twitter\.com/[a-zA-Z0-9_]+`),
	regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?x\.com/[a-zA-Z0-9_]+`),
}

var invitePattern = regexp.MustCompile(`(?i)chat\.whatsapp\.com/([a-zA-Z0-9]+)`)

// ContainsGroupLink reports whether text carries any known group,
// channel or profile link.
func ContainsGroupLink(text string) bool {
	for _, p := range linkPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// IsGroupInvite reports whether text carries a WhatsApp group invite
// link specifically.
func IsGroupInvite(text string) bool {
	return invitePattern.MatchString(text)
}

// ExtractInviteCode returns the invite code from the first WhatsApp
// group link in text, or "" if there is none.
func ExtractInviteCode(text string) string {
	m := invitePattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// Word boundaries for the bad-word matcher: start/end of text,
// whitespace, and the fixed punctuation set covering both Latin and
// Arabic separators.
const boundaryClass = `\s.,!?؟،:;()\[\]{}'"-`

var badWordCache sync.Map // word -> *regexp.Regexp

func badWordRegexp(word string) *regexp.Regexp {
	if re, ok := badWordCache.Load(word); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`(?i)(^|[` + boundaryClass + `])` + regexp.QuoteMeta(word) + `($|[` + boundaryClass + `])`)
	badWordCache.Store(word, re)
	return re
}

// MatchBadWords returns every configured word that appears in text at a
// word boundary, case-insensitively. A listed word embedded inside a
// longer word does not match ("ass" must not fire on "class").
func MatchBadWords(text string, words []string) []string {
	text = strings.TrimSpace(strings.ToLower(text))
	if text == "" {
		return nil
	}
	var found []string
	for _, w := range words {
		if badWordRegexp(strings.ToLower(w)).MatchString(text) {
			found = append(found, w)
		}
	}
	return found
}
