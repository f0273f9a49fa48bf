package recordfile

import (
	"errors"
	"strings"
	"testing"

	"github.com/starford/terminalart/internal/apperr"
	"github.com/starford/terminalart/internal/models"
)

func TestParse(t *testing.T) {
	input := []byte("id: 12\nauthor: \"0xabc\"\nfid: 6529\nusername: punk6529\ntext: gm\ntimestamp: 1737908940\ncolor: \"#ff00ff\"\n")
	rec, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID != 12 || rec.Username != "punk6529" || rec.Text != "gm" {
		t.Errorf("record = %+v", rec)
	}
	if rec.Color != [3]byte{0xff, 0x00, 0xff} {
		t.Errorf("color = %v", rec.Color)
	}
	if rec.FID != 6529 || rec.Timestamp != 1737908940 {
		t.Errorf("fid/timestamp = %d/%d", rec.FID, rec.Timestamp)
	}
}

func TestParse_DefaultColor(t *testing.T) {
	rec, err := Parse([]byte("id: 1\nusername: anon\ntext: hi\ntimestamp: 0\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Color != [3]byte{0x00, 0xff, 0x00} {
		t.Errorf("color = %v, want accent", rec.Color)
	}
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad yaml":      "id: [",
		"zero id":       "id: 0\nusername: a\ntext: b\n",
		"no username":   "id: 1\ntext: b\n",
		"long username": "id: 1\nusername: " + strings.Repeat("u", 65) + "\ntext: b\n",
		"long text":     "id: 1\nusername: a\ntext: " + strings.Repeat("t", 121) + "\n",
		"bad color":     "id: 1\nusername: a\ntext: b\ncolor: green\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(input))
			if !errors.Is(err, apperr.ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	in := models.Record{ID: 3, Username: "dwr.eth", Text: "Farcaster is a protocol", Timestamp: 1737907740, Color: [3]byte{0xff, 0xff, 0x00}}
	data, err := Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), "#ffff00") {
		t.Errorf("color not hex encoded:\n%s", data)
	}
	out, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestName(t *testing.T) {
	if Name(42) != "42.yaml" {
		t.Errorf("Name(42) = %q", Name(42))
	}
	if id, ok := IDFromName("spool/42.yaml"); !ok || id != 42 {
		t.Errorf("IDFromName = %d, %v", id, ok)
	}
	for _, bad := range []string{"0.yaml", "x.yaml", "42.yml", ".spool-tmp-1"} {
		if _, ok := IDFromName(bad); ok {
			t.Errorf("IDFromName(%q) accepted", bad)
		}
	}
}
