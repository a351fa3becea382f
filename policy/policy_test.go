package policy

import (
	"testing"
	"time"
)

func adminCapableEnv() Env {
	return Env{
		BotIsAdmin:  true,
		InviteCode:  "AbCd1234EfGh",
		SenderPhone: "923001234567",
		SenderJID:   "923001234567@s.whatsapp.net",
	}
}

func TestEvaluateLinkKicksOnForeignInvite(t *testing.T) {
	env := adminCapableEnv()
	s := DefaultSettings()
	act := EvaluateLink(env, s, "join us https://chat.whatsapp.com/Zz9876543210")
	if act.Kind != Kick {
		t.Fatalf("Kind = %q, want %q", act.Kind, Kick)
	}
	if act.Mention != env.SenderJID {
		t.Fatalf("Mention = %q, want sender JID", act.Mention)
	}
}

func TestEvaluateLinkOwnInviteExempt(t *testing.T) {
	env := adminCapableEnv()
	s := DefaultSettings()
	act := EvaluateLink(env, s, "our group: https://chat.whatsapp.com/AbCd1234EfGh")
	if act.Kind != None {
		t.Fatalf("own invite link fired: Kind = %q", act.Kind)
	}
}

func TestEvaluateLinkAdminExempt(t *testing.T) {
	env := adminCapableEnv()
	env.SenderIsAdmin = true
	act := EvaluateLink(env, DefaultSettings(), "https://t.me/somechannel")
	if act.Kind != None {
		t.Fatalf("admin sender fired: Kind = %q", act.Kind)
	}
}

func TestEvaluateLinkNeedsBotAdmin(t *testing.T) {
	env := adminCapableEnv()
	env.BotIsAdmin = false
	act := EvaluateLink(env, DefaultSettings(), "https://chat.whatsapp.com/Zz9876543210")
	if act.Kind != None {
		t.Fatalf("fired without admin capability: Kind = %q", act.Kind)
	}
}

func TestEvaluateLinkDisabled(t *testing.T) {
	s := DefaultSettings()
	s.AntiLink = false
	act := EvaluateLink(adminCapableEnv(), s, "https://chat.whatsapp.com/Zz9876543210")
	if act.Kind != None {
		t.Fatalf("fired while disabled: Kind = %q", act.Kind)
	}
}

func TestEvaluateBadWords(t *testing.T) {
	env := adminCapableEnv()
	s := DefaultSettings()
	words := []string{"hell", "ass"}

	if act := EvaluateBadWords(env, s, "this is hell", words); act.Kind != Kick {
		t.Fatalf("'this is hell': Kind = %q, want %q", act.Kind, Kick)
	}
	if act := EvaluateBadWords(env, s, "I am in class right now", words); act.Kind != None {
		t.Fatalf("'class' matched 'ass': Kind = %q", act.Kind)
	}
	if act := EvaluateBadWords(env, s, "hello everyone", words); act.Kind != None {
		t.Fatalf("'hello' matched 'hell': Kind = %q", act.Kind)
	}
	env.SenderIsAdmin = true
	if act := EvaluateBadWords(env, s, "this is hell", words); act.Kind != None {
		t.Fatalf("admin sender fired: Kind = %q", act.Kind)
	}
}

func TestEvaluatePrivateInfraction(t *testing.T) {
	if act := EvaluatePrivateInfraction(1, 2); act.Kind != Warn {
		t.Fatalf("first infraction: Kind = %q, want %q", act.Kind, Warn)
	}
	if act := EvaluatePrivateInfraction(2, 2); act.Kind != BlockPrivate {
		t.Fatalf("second infraction: Kind = %q, want %q", act.Kind, BlockPrivate)
	}
	if act := EvaluatePrivateInfraction(5, 2); act.Kind != BlockPrivate {
		t.Fatalf("past threshold: Kind = %q, want %q", act.Kind, BlockPrivate)
	}
}

func TestShouldBeClosed(t *testing.T) {
	at := func(hour int) time.Time {
		return time.Date(2026, 3, 10, hour, 30, 0, 0, time.Local)
	}
	cases := []struct {
		hour int
		want bool
	}{
		{21, true},
		{23, true},
		{0, true},
		{7, true},
		{20, true}, // close hour itself is inside the window
		{8, false}, // open hour itself is outside
		{9, false},
		{12, false},
		{19, false},
	}
	for _, tc := range cases {
		if got := ShouldBeClosed(at(tc.hour), "20:00", "08:00"); got != tc.want {
			t.Errorf("hour %d: got %v, want %v", tc.hour, got, tc.want)
		}
	}
}

func TestShouldBeClosedDaytimeWindow(t *testing.T) {
	at := func(hour int) time.Time {
		return time.Date(2026, 3, 10, hour, 0, 0, 0, time.Local)
	}
	// close 09:00, open 17:00: closed during the working day.
	if !ShouldBeClosed(at(12), "09:00", "17:00") {
		t.Fatal("hour 12 should be closed")
	}
	if ShouldBeClosed(at(18), "09:00", "17:00") {
		t.Fatal("hour 18 should be open")
	}
}

func TestLockedTitle(t *testing.T) {
	locked := LockedTitle("Friends")
	if locked == "Friends" {
		t.Fatal("lock marker not appended")
	}
	if !IsLockedTitle(locked) {
		t.Fatalf("IsLockedTitle(%q) = false", locked)
	}
	if LockedTitle(locked) != locked {
		t.Fatal("lock marker stacked on an already-locked title")
	}
	if IsLockedTitle("Friends") {
		t.Fatal("plain title reported as locked")
	}
}

func TestShouldBeClosedBadInput(t *testing.T) {
	now := time.Date(2026, 3, 10, 21, 0, 0, 0, time.Local)
	if ShouldBeClosed(now, "nonsense", "08:00") {
		t.Fatal("unparseable close time should fail open")
	}
	if ShouldBeClosed(now, "20:00", "") {
		t.Fatal("empty open time should fail open")
	}
	if ShouldBeClosed(now, "20:00", "20:00") {
		t.Fatal("equal hours should fail open")
	}
}

func TestEvaluateAntiTimeTransitions(t *testing.T) {
	s := DefaultSettings()
	s.AntiTime.Enabled = true
	night := time.Date(2026, 3, 10, 21, 0, 0, 0, time.Local)
	morning := time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)

	s.AntiTime.Status = StatusOpened
	if act := EvaluateAntiTime(s, night); act.Kind != CloseGroup {
		t.Fatalf("opened at night: Kind = %q, want %q", act.Kind, CloseGroup)
	}

	s.AntiTime.Status = StatusClosed
	if act := EvaluateAntiTime(s, night); act.Kind != None {
		t.Fatalf("closed at night: Kind = %q, want no-op", act.Kind)
	}
	if act := EvaluateAntiTime(s, morning); act.Kind != OpenGroup {
		t.Fatalf("closed in the morning: Kind = %q, want %q", act.Kind, OpenGroup)
	}

	s.AntiTime.Status = StatusOpened
	if act := EvaluateAntiTime(s, morning); act.Kind != None {
		t.Fatalf("opened in the morning: Kind = %q, want no-op", act.Kind)
	}

	s.AntiTime.Enabled = false
	s.AntiTime.Status = StatusOpened
	if act := EvaluateAntiTime(s, night); act.Kind != None {
		t.Fatalf("disabled lock fired: Kind = %q", act.Kind)
	}
}
