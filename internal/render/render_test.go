package render

import (
	"bytes"
	"encoding/xml"
	"errors"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/starford/terminalart/internal/models"
)

func punk() models.Entry {
	return models.Entry{
		ID:       5,
		Username: "punk6529",
		Text:     "NFTs are not just JPEGs. They are programmable property rights on the internet.",
		Color:    "#FF00FF",
		Posted:   1737908940,
		Stamp:    "2025.01.26 16:29",
	}
}

func texts(s Scene) []*Text {
	var out []*Text
	for _, it := range s.Items {
		if t, ok := it.(*Text); ok {
			out = append(out, t)
		}
	}
	return out
}

func TestArtifact(t *testing.T) {
	s := Artifact(punk())
	require.Equal(t, 1000, s.Width)
	require.Equal(t, Background, s.Background)

	want := []string{
		"Public_Terminal",
		"[2025.01.26 16:29]",
		"<punk6529> NFTs are not just",
		"JPEGs. They are programmable",
		"property rights on the",
		"internet.",
	}
	if diff := cmp.Diff(want, s.Lines()); diff != "" {
		t.Errorf("artifact lines mismatch (-want +got):\n%s", diff)
	}

	ts := texts(s)
	require.Equal(t, 380.0, ts[2].Y)
	require.Equal(t, 440.0, ts[3].Y)
	require.Equal(t, []Run{
		{Text: "<punk6529> ", Fill: "#FF00FF"},
		{Text: "NFTs are not just", Fill: Foreground},
	}, ts[2].Runs)
}

func TestArtifact_TruncationMarker(t *testing.T) {
	e := punk()
	e.Text = strings.TrimSpace(strings.Repeat("word ", 40))
	ts := texts(Artifact(e))

	last := ts[len(ts)-1]
	require.Equal(t, "...", last.Content())
	require.Equal(t, 740.0, last.Y)
	require.Len(t, ts, 2+6+1)
}

func TestFeedList_Empty(t *testing.T) {
	require.Equal(t, []string{"Public_Terminal", "No transmissions yet..."}, FeedList(nil).Lines())
}

func TestFeedList(t *testing.T) {
	entries := make([]models.Entry, 20)
	for i := range entries {
		entries[i] = models.Entry{
			ID:       uint64(i + 1),
			Username: "vitalik.eth",
			Text:     "The future of Ethereum is looking bright. Layer 2s are scaling beautifully.",
			Color:    "#00FF00",
			Stamp:    "2025.01.26 16:34",
		}
	}
	s := FeedList(entries)

	ts := texts(s)
	require.Equal(t, "[2025.01.26 16:34]", ts[1].Content())
	require.Equal(t, 100.0, ts[1].Y)
	require.Equal(t, []Run{
		{Text: "<vitalik.eth>", Fill: "#00FF00"},
		{Text: " The future of Ethereum is looking bright. Layer 2s are", Fill: Foreground},
	}, ts[2].Runs)
	require.Equal(t, 124.0, ts[2].Y)
	require.Equal(t, "scaling beautifully.", ts[3].Content())
	// Next message starts after the 20px gap.
	require.Equal(t, 192.0, ts[4].Y)

	for _, tx := range ts {
		require.Less(t, tx.Y, 960.0)
	}
}

func window() models.Window {
	total := uint64(42)
	w := models.Window{Target: 10, Total: &total}
	for id := uint64(8); id <= 11; id++ {
		w.Entries = append(w.Entries, models.Entry{
			ID: id, Username: "anon", Text: strings.Repeat("xx ", 30), Color: "#00FFFF", Stamp: "2025.01.26 16:34",
		})
	}
	return w
}

func TestWindow(t *testing.T) {
	s := Window(window(), WindowLarge)
	require.Equal(t, 1200, s.Width)
	require.Equal(t, 800, s.Height)
	require.Contains(t, s.Lines(), "#10 of 42")
	require.Contains(t, s.Lines(), "Permanent on-chain transmissions on Base")

	borders := 0
	for _, it := range s.Items {
		if r, ok := it.(*Rect); ok && r.Fill == Accent {
			borders++
		}
	}
	require.Equal(t, 1, borders)

	var dimmed, bright int
	for _, tx := range texts(s) {
		if !strings.HasPrefix(tx.Content(), "<anon>") {
			continue
		}
		require.Len(t, tx.Runs, 2)
		if opacity(tx.Opacity) < 1 {
			dimmed++
			require.Equal(t, NeighbourBody, tx.Runs[1].Fill)
		} else {
			bright++
			require.Equal(t, TargetBody, tx.Runs[1].Fill)
		}
	}
	require.Equal(t, 3, dimmed)
	require.Equal(t, 1, bright)

	clipped := 0
	for _, l := range s.Lines() {
		if strings.HasSuffix(l, "x...") {
			clipped++
		}
	}
	require.Equal(t, 4, clipped, "text is clipped to 70 characters")
}

func TestWindow_WithoutTotal(t *testing.T) {
	w := window()
	w.Total = nil
	for _, l := range Window(w, WindowCompact).Lines() {
		require.NotContains(t, l, " of ")
	}
}

func TestSelect(t *testing.T) {
	w := window()
	require.Equal(t, ModeWindow, Select(w, 3))
	require.Equal(t, ModeSingle, Select(w, 0))

	missing := w
	missing.Target = 12
	require.Equal(t, ModePromo, Select(missing, 3))
	require.Equal(t, ModePromo, Select(models.Window{}, 0))
}

func TestCompose(t *testing.T) {
	w := models.Window{Target: 5, Entries: []models.Entry{punk()}}

	s, mode := Compose(w, ViewReceipt)
	require.Equal(t, ModeSingle, mode)
	require.Equal(t, 1200, s.Width)
	require.Equal(t, 630, s.Height)
	require.Contains(t, s.Lines(), "TX #5")
	require.Contains(t, s.Lines(), "of ??? transmissions")

	s, mode = Compose(w, ViewArtifact)
	require.Equal(t, ModeSingle, mode)
	require.Equal(t, 1000, s.Width)

	s, mode = Compose(w, ViewCompact)
	require.Equal(t, ModeWindow, mode)
	require.Equal(t, 418, s.Height)

	s, mode = Compose(models.Window{Target: 6}, ViewWindow)
	require.Equal(t, ModePromo, mode)
	require.Equal(t, []string{"Public_Terminal", "Mint a permanent text artifact to the global feed.", "MINT"}, s.Lines())
}

func TestParseView(t *testing.T) {
	for _, name := range []string{"artifact", "receipt", "window", "compact"} {
		v, ok := ParseView(name)
		require.True(t, ok)
		require.Equal(t, name, v.String())
	}
	_, ok := ParseView("poster")
	require.False(t, ok)
	require.Equal(t, 3, ViewWindow.HalfWidth())
	require.Equal(t, 1, ViewCompact.HalfWidth())
	require.Equal(t, 0, ViewReceipt.HalfWidth())
}

func TestEncodeSVG(t *testing.T) {
	e := punk()
	e.Text = `a < b & "c"`
	out := string(EncodeSVG(Artifact(e)))

	require.True(t, strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" width="1000" height="1000" viewBox="0 0 1000 1000">`))
	require.Contains(t, out, `<rect width="100%" height="100%" fill="#1A1A1A"/>`)
	require.Contains(t, out, `<text x="60" y="70" font-size="24" font-weight="bold" fill="#FFFFFF">Public_Terminal</text>`)
	require.Contains(t, out, `<tspan fill="#FF00FF">&lt;punk6529&gt; </tspan>`)
	require.Contains(t, out, `a &lt; b &amp; &#34;c&#34;`)

	dec := xml.NewDecoder(strings.NewReader(out))
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
	}
}

func TestEncodeSVG_Opacity(t *testing.T) {
	out := string(EncodeSVG(Window(window(), WindowLarge)))
	require.Contains(t, out, `opacity="0.5"`)
	require.Contains(t, out, `text-anchor="end"`)
}

func TestEncodePNG(t *testing.T) {
	body, err := Encode(Promo(), FormatPNG)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, 1200, img.Bounds().Dx())
	require.Equal(t, 630, img.Bounds().Dy())

	rgb := func(x, y int) [3]uint32 {
		r, g, b, _ := img.At(x, y).RGBA()
		return [3]uint32{r >> 8, g >> 8, b >> 8}
	}
	require.Equal(t, [3]uint32{0x1a, 0x1a, 0x1a}, rgb(5, 5))
	require.Equal(t, [3]uint32{0x00, 0xff, 0x00}, rgb(51, 540), "MINT outline")
}

func TestEncodePNG_AllLayouts(t *testing.T) {
	scenes := []Scene{Artifact(punk()), FeedList([]models.Entry{punk()}), Receipt(punk(), nil), Window(window(), WindowCompact)}
	for _, s := range scenes {
		body, err := EncodePNG(s)
		require.NoError(t, err)
		cfg, err := png.DecodeConfig(bytes.NewReader(body))
		require.NoError(t, err)
		require.Equal(t, s.Width, cfg.Width)
		require.Equal(t, s.Height, cfg.Height)
	}
}

func TestFormat(t *testing.T) {
	f, ok := ParseFormat("")
	require.True(t, ok)
	require.Equal(t, FormatSVG, f)
	f, ok = ParseFormat("png")
	require.True(t, ok)
	require.Equal(t, "image/png", f.ContentType())
	_, ok = ParseFormat("gif")
	require.False(t, ok)
	require.Equal(t, "image/svg+xml", FormatSVG.ContentType())
}
