package policy

import "testing"

func TestContainsGroupLink(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"https://chat.whatsapp.com/AbCd1234", true},
		{"chat.whatsapp.com/AbCd1234 no scheme", true},
		{"join https://t.me/mychannel now", true},
		{"https://discord.gg/xyz123", true},
		{"https://www.youtube.com/@somecreator", true},
		{"youtu.be/dQw4w9WgXcQ", true},
		{"https://x.com/someone", true},
		{"just a normal message", false},
		{"see example.com for details", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := ContainsGroupLink(tc.text); got != tc.want {
			t.Errorf("ContainsGroupLink(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestExtractInviteCode(t *testing.T) {
	if got := ExtractInviteCode("https://chat.whatsapp.com/AbCd1234EfGh extra"); got != "AbCd1234EfGh" {
		t.Fatalf("got %q, want AbCd1234EfGh", got)
	}
	if got := ExtractInviteCode("https://t.me/notwhatsapp"); got != "" {
		t.Fatalf("non-invite text returned %q", got)
	}
}

func TestMatchBadWordsBoundaries(t *testing.T) {
	words := []string{"hell", "ass"}
	if found := MatchBadWords("this is hell", words); len(found) != 1 || found[0] != "hell" {
		t.Fatalf("got %v, want [hell]", found)
	}
	if found := MatchBadWords("hell.", words); len(found) != 1 {
		t.Fatalf("trailing punctuation: got %v", found)
	}
	if found := MatchBadWords("HELL no", words); len(found) != 1 {
		t.Fatalf("case fold: got %v", found)
	}
	if found := MatchBadWords("I am in class", words); len(found) != 0 {
		t.Fatalf("'class' matched: %v", found)
	}
	if found := MatchBadWords("hello shell passport", words); len(found) != 0 {
		t.Fatalf("substrings matched: %v", found)
	}
	if found := MatchBadWords("", words); len(found) != 0 {
		t.Fatalf("empty text matched: %v", found)
	}
}
