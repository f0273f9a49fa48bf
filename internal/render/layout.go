package render

import (
	"fmt"

	"github.com/starford/terminalart/internal/models"
	"github.com/starford/terminalart/internal/timestamp"
	"github.com/starford/terminalart/internal/wrap"
)

const title = "Public_Terminal"

// Artifact layout. These values reproduce the on-chain renderer and must
// not drift from it.
const (
	ArtifactSize       = 1000 // square, in pixels
	artifactX          = 60
	artifactFirstLineY = 380
	artifactLineHeight = 60
	artifactFont       = 48
	artifactWidth      = 28
	artifactMinFirst   = 5
	artifactMaxLines   = 6
)

// Feed list layout, also fixed by the on-chain renderer.
const (
	feedListFont       = 18
	feedListX          = 40
	feedListStartY     = 100
	feedListLineHeight = 24
	feedListSpacing    = 20
	feedListLimitY     = 960
	feedListWidth      = 70
	feedListMaxLines   = 3
	FeedListMax        = 15
)

// Artifact lays out the 1000x1000 single-message artifact: title,
// timestamp and the labeled text block with the username in e.Color.
// A "..." line marks text dropped at the line cap.
func Artifact(e models.Entry) Scene {
	s := Scene{Width: ArtifactSize, Height: ArtifactSize, Background: Background}
	s.text(artifactX, 70, 24, Foreground, title).Bold = true
	s.text(artifactX, 280, artifactFont, Foreground, "["+e.Stamp+"]")

	block := wrap.Labeled(e.Username, e.Text, artifactWidth, artifactMinFirst, artifactMaxLines)
	y := float64(artifactFirstLineY)
	for _, line := range block.Lines {
		s.Items = append(s.Items, &Text{
			X: artifactX, Y: y, Size: artifactFont,
			Runs: runs(line, e.Color, Foreground),
		})
		y += artifactLineHeight
	}
	if block.Truncated {
		s.text(artifactX, y, artifactFont, Muted, "...")
	}
	return s
}

// FeedList lays out up to FeedListMax entries in the order given, each as
// a timestamp line followed by the wrapped "<username> text". Drawing
// stops once the cursor passes the bottom margin.
func FeedList(entries []models.Entry) Scene {
	s := Scene{Width: ArtifactSize, Height: ArtifactSize, Background: Background}
	s.text(feedListX, 50, feedListFont, Foreground, title).Bold = true

	if len(entries) == 0 {
		s.text(feedListX, feedListStartY, feedListFont, Foreground, "No transmissions yet...")
		return s
	}

	y := float64(feedListStartY)
	for i := 0; i < min(len(entries), FeedListMax) && y < feedListLimitY; i++ {
		e := entries[i]
		s.text(feedListX, y, feedListFont, Foreground, "["+e.Stamp+"]")
		y += feedListLineHeight

		block := wrap.Feed(e.Username, e.Text, feedListWidth, feedListMaxLines)
		for _, line := range block.Lines {
			if y >= feedListLimitY {
				break
			}
			s.Items = append(s.Items, &Text{
				X: feedListX, Y: y, Size: feedListFont,
				Runs: runs(line, e.Color, Foreground),
			})
			y += feedListLineHeight
		}
		y += feedListSpacing
	}
	return s
}

const (
	receiptWidth    = 46
	receiptMaxLines = 4
)

// Receipt lays out the 1200x630 transmission receipt for e. total is
// printed as "???" when unknown.
func Receipt(e models.Entry, total *uint64) Scene {
	s := Scene{Width: 1200, Height: 630, Background: ReceiptBack}

	s.text(50, 82, 42, Foreground, "PUBLIC_TERMINAL").Bold = true
	s.text(50, 114, 20, Muted, "TRANSMISSION RECEIPT")
	tx := s.text(1150, 72, 28, Accent, fmt.Sprintf("TX #%d", e.ID))
	tx.Bold, tx.Anchor = true, AnchorEnd
	s.text(1150, 102, 18, Muted, fmt.Sprintf("of %s transmissions", countLabel(total))).Anchor = AnchorEnd
	s.rect(Rect{X: 50, Y: 134, W: 1100, H: 2, Fill: Rule})

	s.text(50, 190, 24, Muted, "["+timestamp.FormatSeconds(e.Posted)+"]")

	s.rect(Rect{X: 50, Y: 214, W: 1100, H: 306, Fill: ReceiptPanel, Stroke: Rule, StrokeWidth: 1})
	s.text(80, 270, 32, e.Color, "<"+e.Username+">").Bold = true
	lines, truncated := wrap.Lines(e.Text, wrap.Fixed(receiptWidth), receiptMaxLines)
	y := 326.0
	for _, l := range lines {
		s.text(80, y, 36, Soft, l)
		y += 50
	}
	if truncated {
		s.text(80, y-20, 24, Muted, "...")
	}

	s.rect(Rect{X: 50, Y: 546, W: 1100, H: 1, Fill: Rule})
	s.text(50, 590, 18, Muted, "Permanent on-chain artifact on Base")
	s.text(1122, 590, 18, Accent, "VERIFIED").Anchor = AnchorEnd
	s.rect(Rect{X: 1138, Y: 577, W: 12, H: 12, Fill: Accent})
	return s
}

// Promo lays out the generic 1200x630 card used when nothing
// record-specific can be drawn.
func Promo() Scene {
	s := Scene{Width: 1200, Height: 630, Background: Background}
	t := s.text(50, 90, 32, Foreground, title)
	t.Bold, t.Italic = true, true
	s.text(50, 170, 24, Soft, "Mint a permanent text artifact to the global feed.")
	s.rect(Rect{X: 50, Y: 516, W: 124, H: 64, Fill: Background, Stroke: Accent, StrokeWidth: 2})
	mint := s.text(112, 554, 18, Foreground, "MINT")
	mint.Bold, mint.Anchor = true, AnchorMiddle
	return s
}

// WindowSpec sizes a feed-window layout.
type WindowSpec struct {
	Width, Height int
	HalfWidth     int
	Font          float64
	Budget        int
	MaxLines      int
}

var (
	// WindowLarge is the 1200x800 card showing three records either side.
	WindowLarge = WindowSpec{Width: 1200, Height: 800, HalfWidth: 3, Font: 28, Budget: 60, MaxLines: 3}
	// WindowCompact is the 800x418 card showing one record either side.
	WindowCompact = WindowSpec{Width: 800, Height: 418, HalfWidth: 1, Font: 20, Budget: 56, MaxLines: 3}
)

const (
	windowMargin     = 40
	windowTextClip   = 70
	windowDimOpacity = 0.5
	windowBorder     = 4
)

// Window lays out an assembled window. The target row carries an accent
// border on its left edge and every other row is dimmed. Rows that would
// run into the footer are left out.
func Window(w models.Window, spec WindowSpec) Scene {
	s := Scene{Width: spec.Width, Height: spec.Height, Background: Background}
	lineHeight := spec.Font * 1.25
	titleSize := spec.Font * 1.25

	headerY := 30 + titleSize
	t := s.text(windowMargin, headerY, titleSize, Foreground, title)
	t.Bold, t.Italic = true, true
	if w.Total != nil {
		s.text(float64(spec.Width-windowMargin), headerY, spec.Font*0.85, Muted,
			fmt.Sprintf("#%d of %d", w.Target, *w.Total)).Anchor = AnchorEnd
	}

	footerSize := spec.Font * 0.7
	footerY := float64(spec.Height) - 30
	limit := footerY - footerSize - 12

	y := headerY + 24
	for _, e := range w.Entries {
		block := wrap.Feed(e.Username, wrap.Clip(e.Text, windowTextClip), spec.Budget, spec.MaxLines)
		rowHeight := float64(len(block.Lines))*lineHeight + 8
		if y+rowHeight > limit {
			break
		}

		target := e.ID == w.Target
		alpha, body := windowDimOpacity, NeighbourBody
		if target {
			alpha, body = 1, TargetBody
			s.rect(Rect{X: windowMargin, Y: y, W: windowBorder, H: rowHeight, Fill: Accent})
		}
		baseline := y + 4 + lineHeight*0.8
		for _, line := range block.Lines {
			s.Items = append(s.Items, &Text{
				X: windowMargin + windowBorder + 12, Y: baseline, Size: spec.Font,
				Opacity: alpha,
				Runs:    runs(line, e.Color, body),
			})
			baseline += lineHeight
		}
		y += rowHeight + 8
	}

	s.text(windowMargin, footerY, footerSize, Muted, "Permanent on-chain transmissions on Base")
	return s
}

func runs(line wrap.Line, label, body string) []Run {
	out := make([]Run, 0, len(line.Segments))
	for _, seg := range line.Segments {
		fill := body
		if seg.Role == wrap.RoleLabel {
			fill = label
		}
		out = append(out, Run{Text: seg.Text, Fill: fill})
	}
	return out
}

func countLabel(total *uint64) string {
	if total == nil {
		return "???"
	}
	return fmt.Sprintf("%d", *total)
}
