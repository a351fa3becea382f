package store

import (
	"sort"
	"sync"
	"time"

	"waguard/policy"
)

// maxDownloadRecords / keepDownloadRecords bound the download log:
// once the log passes the max it is trimmed back to the newest keep.
const (
	maxDownloadRecords  = 10000
	keepDownloadRecords = 5000
)

// --- Blocklist ---

type BlockRecord struct {
	JID    string    `json:"jid"`
	Reason string    `json:"reason"`
	Time   time.Time `json:"time"`
}

// Blocklist records who the bot has blocked and why.
type Blocklist struct {
	mu      sync.Mutex
	backend Backend
	records []BlockRecord
}

func NewBlocklist(b Backend) *Blocklist {
	s := &Blocklist{backend: b}
	if err := b.Load("blocklist", &s.records); err != nil {
		s.records = nil
	}
	return s
}

func (s *Blocklist) Add(jid, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.JID == jid {
			return nil
		}
	}
	s.records = append(s.records, BlockRecord{JID: jid, Reason: reason, Time: time.Now()})
	return s.backend.Save("blocklist", s.records)
}

func (s *Blocklist) Remove(jid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.records[:0]
	for _, r := range s.records {
		if r.JID != jid {
			out = append(out, r)
		}
	}
	s.records = out
	return s.backend.Save("blocklist", s.records)
}

func (s *Blocklist) Contains(jid string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.JID == jid {
			return true
		}
	}
	return false
}

func (s *Blocklist) All() []BlockRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]BlockRecord, len(s.records))
	copy(out, s.records)
	return out
}

// --- Users ---

type UserRecord struct {
	JID        string    `json:"jid"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"createdAt"`
	LastActive time.Time `json:"lastActive"`
	Messages   int       `json:"messages"`
}

// Users tracks everyone the bot has seen, for stats and greetings.
type Users struct {
	mu      sync.Mutex
	backend Backend
	users   map[string]*UserRecord
}

func NewUsers(b Backend) *Users {
	s := &Users{backend: b, users: map[string]*UserRecord{}}
	if err := b.Load("users", &s.users); err != nil {
		s.users = map[string]*UserRecord{}
	}
	return s
}

// Touch upserts the user and bumps their activity counters.
func (s *Users) Touch(jid, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[jid]
	if !ok {
		u = &UserRecord{JID: jid, CreatedAt: time.Now()}
		s.users[jid] = u
	}
	if name != "" {
		u.Name = name
	}
	u.LastActive = time.Now()
	u.Messages++
	return s.backend.Save("users", s.users)
}

func (s *Users) Get(jid string) (UserRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[jid]
	if !ok {
		return UserRecord{}, false
	}
	return *u, true
}

func (s *Users) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// --- Downloads ---

type DownloadRecord struct {
	URL      string    `json:"url"`
	Filename string    `json:"filename"`
	Size     int64     `json:"size"`
	Parts    int       `json:"parts"`
	User     string    `json:"user"`
	Time     time.Time `json:"time"`
}

// DownloadStats is the aggregate view served by the dashboard.
type DownloadStats struct {
	Total      int   `json:"total"`
	TotalBytes int64 `json:"totalBytes"`
	Split      int   `json:"split"`
}

// Downloads is an append log of completed transfers.
type Downloads struct {
	mu      sync.Mutex
	backend Backend
	records []DownloadRecord
}

func NewDownloads(b Backend) *Downloads {
	s := &Downloads{backend: b}
	if err := b.Load("downloads", &s.records); err != nil {
		s.records = nil
	}
	return s
}

func (s *Downloads) Add(rec DownloadRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.Time.IsZero() {
		rec.Time = time.Now()
	}
	s.records = append(s.records, rec)
	s.records = trimDownloads(s.records)
	return s.backend.Save("downloads", s.records)
}

// trimDownloads drops the oldest entries once the log passes the cap.
func trimDownloads(recs []DownloadRecord) []DownloadRecord {
	if len(recs) <= maxDownloadRecords {
		return recs
	}
	return recs[len(recs)-keepDownloadRecords:]
}

func (s *Downloads) ForUser(jid string, limit int) []DownloadRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []DownloadRecord
	for i := len(s.records) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if s.records[i].User == jid {
			out = append(out, s.records[i])
		}
	}
	return out
}

func (s *Downloads) Stats() DownloadStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	var st DownloadStats
	st.Total = len(s.records)
	for _, r := range s.records {
		st.TotalBytes += r.Size
		if r.Parts > 1 {
			st.Split++
		}
	}
	return st
}

// --- Groups ---

// Groups maps a group JID to its moderation settings. A group nobody
// has configured reads as the default settings without being written.
type Groups struct {
	mu      sync.Mutex
	backend Backend
	groups  map[string]policy.Settings
}

func NewGroups(b Backend) *Groups {
	s := &Groups{backend: b, groups: map[string]policy.Settings{}}
	if err := b.Load("groups", &s.groups); err != nil {
		s.groups = map[string]policy.Settings{}
	}
	return s
}

func (s *Groups) Get(jid string) policy.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.groups[jid]; ok {
		return g
	}
	return policy.DefaultSettings()
}

// Update applies fn to the group's settings under the lock, so two
// concurrent toggles cannot lose each other's write.
func (s *Groups) Update(jid string, fn func(*policy.Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[jid]
	if !ok {
		g = policy.DefaultSettings()
	}
	fn(&g)
	s.groups[jid] = g
	return s.backend.Save("groups", s.groups)
}

func (s *Groups) Remove(jid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.groups, jid)
	return s.backend.Save("groups", s.groups)
}

// All returns the configured group JIDs in stable order, for the
// scheduler sweep.
func (s *Groups) All() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.groups))
	for jid := range s.groups {
		out = append(out, jid)
	}
	sort.Strings(out)
	return out
}

// --- AntiPrivate ---

// AntiPrivateState is the global private-chat policy: when enabled the
// bot steers private senders to the group instead of serving them.
// Blocked holds senders who already got the redirect once; their later
// private messages are dropped silently.
type AntiPrivateState struct {
	Enabled   bool     `json:"enabled"`
	GroupLink string   `json:"groupLink"`
	Blocked   []string `json:"blocked"`
}

type AntiPrivate struct {
	mu      sync.Mutex
	backend Backend
	state   AntiPrivateState
}

func NewAntiPrivate(b Backend) *AntiPrivate {
	s := &AntiPrivate{backend: b}
	if err := b.Load("antiprivate", &s.state); err != nil {
		s.state = AntiPrivateState{}
	}
	return s
}

func (s *AntiPrivate) Get() AntiPrivateState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *AntiPrivate) Set(st AntiPrivateState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
	return s.backend.Save("antiprivate", s.state)
}

func (s *AntiPrivate) Block(jid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.state.Blocked {
		if b == jid {
			return nil
		}
	}
	s.state.Blocked = append(s.state.Blocked, jid)
	return s.backend.Save("antiprivate", s.state)
}

func (s *AntiPrivate) IsBlocked(jid string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.state.Blocked {
		if b == jid {
			return true
		}
	}
	return false
}

func (s *AntiPrivate) Unblock(jid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.state.Blocked[:0]
	for _, b := range s.state.Blocked {
		if b != jid {
			out = append(out, b)
		}
	}
	s.state.Blocked = out
	return s.backend.Save("antiprivate", s.state)
}

// --- Warnings ---

type WarningRecord struct {
	Count   int       `json:"count"`
	Reasons []string  `json:"reasons"`
	Last    time.Time `json:"last"`
}

// Warnings counts infractions per sender for the escalation path.
type Warnings struct {
	mu      sync.Mutex
	backend Backend
	warns   map[string]*WarningRecord
}

func NewWarnings(b Backend) *Warnings {
	s := &Warnings{backend: b, warns: map[string]*WarningRecord{}}
	if err := b.Load("warnings", &s.warns); err != nil {
		s.warns = map[string]*WarningRecord{}
	}
	return s
}

// Bump records an infraction and returns the new count.
func (s *Warnings) Bump(jid, reason string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.warns[jid]
	if !ok {
		w = &WarningRecord{}
		s.warns[jid] = w
	}
	w.Count++
	w.Reasons = append(w.Reasons, reason)
	w.Last = time.Now()
	return w.Count, s.backend.Save("warnings", s.warns)
}

func (s *Warnings) Count(jid string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.warns[jid]; ok {
		return w.Count
	}
	return 0
}

func (s *Warnings) Reset(jid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.warns, jid)
	return s.backend.Save("warnings", s.warns)
}
