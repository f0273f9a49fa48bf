// Package recordfile reads and writes the YAML files that make up the
// record spool. One file holds one record and is named after its id.
package recordfile

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/starford/terminalart/internal/apperr"
	"github.com/starford/terminalart/internal/models"
	"github.com/starford/terminalart/internal/palette"
)

// Ext is the extension of spool files.
const Ext = ".yaml"

type document struct {
	ID        uint64 `yaml:"id"`
	Author    string `yaml:"author,omitempty"`
	FID       uint64 `yaml:"fid,omitempty"`
	Username  string `yaml:"username"`
	Text      string `yaml:"text"`
	Timestamp int64  `yaml:"timestamp"`
	Color     string `yaml:"color,omitempty"`
}

// Name returns the spool file name for id.
func Name(id uint64) string {
	return strconv.FormatUint(id, 10) + Ext
}

// IDFromName extracts the record id from a spool file name.
func IDFromName(name string) (uint64, bool) {
	base := filepath.Base(name)
	if !strings.HasSuffix(base, Ext) {
		return 0, false
	}
	id, err := strconv.ParseUint(strings.TrimSuffix(base, Ext), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// Parse decodes and validates a spool file. The color field is "#rrggbb";
// an absent color decodes to the default accent.
func Parse(data []byte) (models.Record, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return models.Record{}, fmt.Errorf("recordfile: %w: %v", apperr.ErrInvalidInput, err)
	}
	rec := models.Record{
		ID:        doc.ID,
		Author:    doc.Author,
		FID:       doc.FID,
		Username:  doc.Username,
		Text:      doc.Text,
		Timestamp: doc.Timestamp,
	}
	if err := Validate(rec); err != nil {
		return models.Record{}, err
	}

	color := doc.Color
	if color == "" {
		color = palette.DefaultAccent
	}
	raw, ok := palette.Bytes3(color)
	if !ok {
		return models.Record{}, fmt.Errorf("recordfile: %w: color %q", apperr.ErrInvalidInput, doc.Color)
	}
	rec.Color = raw
	return rec, nil
}

// Marshal encodes rec as a spool file.
func Marshal(rec models.Record) ([]byte, error) {
	out, err := yaml.Marshal(document{
		ID:        rec.ID,
		Author:    rec.Author,
		FID:       rec.FID,
		Username:  rec.Username,
		Text:      rec.Text,
		Timestamp: rec.Timestamp,
		Color:     palette.FromBytes3(rec.Color),
	})
	if err != nil {
		return nil, fmt.Errorf("recordfile: marshal: %w", err)
	}
	return out, nil
}

// Validate applies the limits the ledger enforces on writes.
func Validate(rec models.Record) error {
	switch {
	case rec.ID == 0:
		return fmt.Errorf("recordfile: %w: id must be positive", apperr.ErrInvalidInput)
	case rec.Username == "" || utf8.RuneCountInString(rec.Username) > models.MaxUsernameLength:
		return fmt.Errorf("recordfile: %w: username must be 1-%d characters", apperr.ErrInvalidInput, models.MaxUsernameLength)
	case rec.Text == "" || utf8.RuneCountInString(rec.Text) > models.MaxTextLength:
		return fmt.Errorf("recordfile: %w: text must be 1-%d characters", apperr.ErrInvalidInput, models.MaxTextLength)
	case rec.Timestamp < 0:
		return fmt.Errorf("recordfile: %w: negative timestamp", apperr.ErrInvalidInput)
	}
	return nil
}
