package wrap

import (
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestLines(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		budget    Budget
		maxLines  int
		want      []string
		truncated bool
	}{
		{
			name:     "narrow first line",
			text:     "hello world this is a test",
			budget:   FirstLine(10, 20),
			maxLines: 3,
			want:     []string{"hello", "world this is a test"},
		},
		{
			name:     "labeled default preview",
			text:     "Hello, Public Terminal!",
			budget:   FirstLine(21, 28),
			maxLines: 6,
			want:     []string{"Hello, Public", "Terminal!"},
		},
		{
			name:     "long word consumed across lines",
			text:     "abcdefghijklmnopqrstuvwxyz",
			budget:   Fixed(10),
			maxLines: 3,
			want:     []string{"abcdefghij", "klmnopqrst", "uvwxyz"},
		},
		{
			name:      "long word cut at cap",
			text:      "abcdefghijklmnopqrstuvwxyz",
			budget:    Fixed(5),
			maxLines:  3,
			want:      []string{"abcde", "fghij", "klmno"},
			truncated: true,
		},
		{
			name:     "split tail stays on its own line",
			text:     "abcdefghijkl hi",
			budget:   Fixed(10),
			maxLines: 3,
			want:     []string{"abcdefghij", "kl", "hi"},
		},
		{
			name:      "words past the cap are dropped",
			text:      "one two three four five six",
			budget:    Fixed(9),
			maxLines:  2,
			want:      []string{"one two", "three"},
			truncated: true,
		},
		{
			name:     "double space kept inside a line",
			text:     "a  b",
			budget:   Fixed(10),
			maxLines: 2,
			want:     []string{"a  b"},
		},
		{
			name:     "empty text",
			text:     "",
			budget:   Fixed(10),
			maxLines: 3,
			want:     nil,
		},
		{
			name:     "120 character word",
			text:     strings.Repeat("a", 120),
			budget:   FirstLine(21, 28),
			maxLines: 6,
			want: []string{
				strings.Repeat("a", 21),
				strings.Repeat("a", 28),
				strings.Repeat("a", 28),
				strings.Repeat("a", 28),
				strings.Repeat("a", 15),
			},
		},
		{
			name:     "multibyte characters count once",
			text:     "héllo wörld",
			budget:   Fixed(5),
			maxLines: 2,
			want:     []string{"héllo", "wörld"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, truncated := Lines(tt.text, tt.budget, tt.maxLines)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("lines mismatch (-want +got):\n%s", diff)
			}
			if truncated != tt.truncated {
				t.Errorf("truncated = %v, want %v", truncated, tt.truncated)
			}
		})
	}
}

func TestLines_Invariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	alphabet := []rune("abcdefghij      é")

	for iter := 0; iter < 2000; iter++ {
		n := rng.Intn(130)
		var b strings.Builder
		for i := 0; i < n; i++ {
			b.WriteRune(alphabet[rng.Intn(len(alphabet))])
		}
		text := b.String()
		first := 1 + rng.Intn(30)
		rest := 1 + rng.Intn(30)
		maxLines := 1 + rng.Intn(6)

		lines, truncated := Lines(text, FirstLine(first, rest), maxLines)
		require.LessOrEqual(t, len(lines), maxLines)
		for i, l := range lines {
			limit := rest
			if i == 0 {
				limit = first
			}
			require.LessOrEqual(t, utf8.RuneCountInString(l), limit, "line %d of %q", i, text)
		}

		squash := func(s string) string { return strings.ReplaceAll(s, " ", "") }
		joined := squash(strings.Join(lines, ""))
		if !truncated {
			require.Equal(t, squash(text), joined, "lost characters wrapping %q", text)
		} else {
			require.True(t, strings.HasPrefix(squash(text), joined), "reordered characters wrapping %q", text)
		}
	}
}

func TestLabeled(t *testing.T) {
	b := Labeled("punk6529", "NFTs are not just JPEGs. They are programmable property rights on the internet.", 28, 5, 6)
	require.False(t, b.Truncated)
	got := make([]string, 0, len(b.Lines))
	for _, l := range b.Lines {
		got = append(got, l.Text())
	}
	want := []string{
		"<punk6529> NFTs are not just",
		"JPEGs. They are programmable",
		"property rights on the",
		"internet.",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("labeled mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, []Segment{
		{Text: "<punk6529> ", Role: RoleLabel},
		{Text: "NFTs are not just", Role: RoleBody},
	}, b.Lines[0].Segments)
	require.Equal(t, RoleBody, b.Lines[1].Segments[0].Role)
}

func TestLabeled_LongUsernameKeepsMinimum(t *testing.T) {
	b := Labeled(strings.Repeat("u", 60), "hello world", 28, 5, 6)
	require.Len(t, b.Lines, 2)
	require.Equal(t, "hello", b.Lines[0].Segments[1].Text)
	require.Equal(t, "world", b.Lines[1].Text())
}

func TestLabeled_FirstLineFloor(t *testing.T) {
	// 22 character username leaves 3 characters, floored to 5.
	b := Labeled(strings.Repeat("u", 22), "abcdefg", 28, 5, 6)
	require.Equal(t, "abcde", b.Lines[0].Segments[1].Text)
	require.Equal(t, "fg", b.Lines[1].Text())
}

func TestLabeled_CapTruncates(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("word ", 40))
	b := Labeled("anon", text, 28, 5, 6)
	require.Len(t, b.Lines, 6)
	require.True(t, b.Truncated)
	require.Equal(t, "word word word word", b.Lines[0].Segments[1].Text)
}

func TestLabeled_EmptyTextStillShowsLabel(t *testing.T) {
	b := Labeled("anon", "", 28, 5, 6)
	require.Len(t, b.Lines, 1)
	require.Equal(t, "<anon> ", b.Lines[0].Text())
}

func TestFeed(t *testing.T) {
	b := Feed("vitalik.eth", "The future of Ethereum is looking bright. Layer 2s are scaling beautifully.", 70, 3)
	require.False(t, b.Truncated)
	require.Len(t, b.Lines, 2)
	require.Equal(t, []Segment{
		{Text: "<vitalik.eth>", Role: RoleLabel},
		{Text: " The future of Ethereum is looking bright. Layer 2s are", Role: RoleBody},
	}, b.Lines[0].Segments)
	require.Equal(t, "scaling beautifully.", b.Lines[1].Text())
}

func TestFeed_LabelOnly(t *testing.T) {
	b := Feed("anon", "", 70, 3)
	require.Len(t, b.Lines, 1)
	require.Equal(t, []Segment{{Text: "<anon>", Role: RoleLabel}}, b.Lines[0].Segments)
}

func TestClip(t *testing.T) {
	require.Equal(t, "short", Clip("short", 70))
	require.Equal(t, "abc...", Clip("abcdef", 3))
	require.Equal(t, "héé...", Clip("héééé", 3))
}

func TestRoleString(t *testing.T) {
	require.Equal(t, "label", RoleLabel.String())
	require.Equal(t, "body", RoleBody.String())
}
