package artifact

import (
	"strings"

	"github.com/starford/terminalart/internal/models"
	"github.com/starford/terminalart/internal/palette"
	"github.com/starford/terminalart/internal/render"
	"github.com/starford/terminalart/internal/timestamp"
)

// Preview defaults for a message without content.
const (
	DefaultUsername = "anon"
	DefaultText     = "Hello, Public Terminal!"
)

// Message is a record supplied directly by a caller, bypassing the ledger.
// Color accepts "#rrggbb" or bare "rrggbb"; Timestamp 0 means now.
type Message struct {
	Username  string `json:"username"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
	Color     string `json:"color,omitempty"`
}

var sampleMessages = []Message{
	{"vitalik.eth", "The future of Ethereum is looking bright. Layer 2s are scaling beautifully.", 1737909240, "00FF00"},
	{"punk6529", "NFTs are not just JPEGs. They are programmable property rights on the internet.", 1737908940, "FF00FF"},
	{"cobie", "gm. markets are fake but we're all gonna make it anyway", 1737908640, "00FFFF"},
	{"zeni.eth", "Everyone buy $shibacumrocketelon! To the moon 2026 Elon will tweet this confirmed 100%", 1737908340, "00FF00"},
	{"jessepollak", "Base is for everyone. Building the global onchain economy one block at a time.", 1737908040, "0000FF"},
	{"dwr.eth", "Farcaster is not a social network. It's a protocol for decentralized social apps.", 1737907740, "FFFF00"},
	{"anoncast", "sometimes the best conversations happen when nobody knows who you are", 1737907440, "FF0000"},
	{"linda.eth", "Art is the only way to run away without leaving home. Minting my thoughts forever.", 1737907140, "FFA500"},
	{"deployer", "Just deployed another contract. Gas fees looking good today.", 1737906840, "00FFFF"},
	{"whale.eth", "Accumulating. Not financial advice. DYOR. NFA. WAGMI. LFG.", 1737906540, "FF00FF"},
	{"builder", "Ship ship ship. That's all we do. Every day we ship.", 1737906240, "00FF00"},
	{"cryptopunk", "Been in this space since 2017. Seen it all. Still here. Still building.", 1737905940, "FFFF00"},
	{"anon", "hello world from the public terminal", 1737905640, "0000FF"},
	{"based.eth", "Onchain summer never ends when you're building on Base", 1737905340, "FF0000"},
	{"gm.eth", "gm to everyone except those who don't say gm back", 1737905040, "FFA500"},
}

// SampleMessages returns the built-in feed used when a preview supplies
// no messages.
func SampleMessages() []Message {
	return append([]Message(nil), sampleMessages...)
}

// PreviewMessage renders m as a single-message artifact without touching
// the ledger. Empty fields take the preview defaults.
func (s *Service) PreviewMessage(m Message, format render.Format) (Document, error) {
	if m.Username == "" {
		m.Username = DefaultUsername
	}
	if m.Text == "" {
		m.Text = DefaultText
	}
	return s.encode(render.Artifact(s.entry(0, m)), render.ModeSingle, format)
}

// PreviewFeed renders msgs as the feed list artifact. A nil slice renders
// the sample messages; an empty one renders the empty-feed notice.
func (s *Service) PreviewFeed(msgs []Message, format render.Format) (Document, error) {
	if msgs == nil {
		msgs = sampleMessages
	}
	entries := make([]models.Entry, 0, min(len(msgs), render.FeedListMax))
	for i, m := range msgs {
		if i == render.FeedListMax {
			break
		}
		entries = append(entries, s.entry(uint64(i+1), m))
	}
	return s.encode(render.FeedList(entries), render.ModeWindow, format)
}

func (s *Service) entry(id uint64, m Message) models.Entry {
	posted := m.Timestamp
	if posted <= 0 {
		posted = s.now().Unix()
	}
	return models.Entry{
		ID:       id,
		Username: m.Username,
		Text:     m.Text,
		Color:    normalizeColor(m.Color),
		Posted:   posted,
		Stamp:    timestamp.Format(posted),
	}
}

func normalizeColor(c string) string {
	if c == "" {
		return palette.DefaultAccent
	}
	if len(c) == 6 && !strings.HasPrefix(c, "#") {
		c = "#" + c
	}
	return palette.Normalize(c)
}
