package artifact

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/starford/terminalart/internal/apperr"
	"github.com/starford/terminalart/internal/ledger"
	"github.com/starford/terminalart/internal/palette"
)

// Attribute is one marketplace trait.
type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// Metadata is the token metadata document for one record.
type Metadata struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Image       string      `json:"image,omitempty"`
	ExternalURL string      `json:"external_url,omitempty"`
	Attributes  []Attribute `json:"attributes"`
}

// Metadata reads record id and describes it. It returns an error wrapping
// apperr.ErrNotFound when the record does not exist and apperr.ErrBackend
// when the ledger could not be read.
func (s *Service) Metadata(ctx context.Context, id uint64) (Metadata, error) {
	if id == 0 {
		return Metadata{}, fmt.Errorf("artifact: metadata: %w: id must be positive", apperr.ErrInvalidInput)
	}
	rec, err := ledger.ReadOne(ctx, s.reader, id)
	if err != nil {
		if isAbsent(err) {
			return Metadata{}, fmt.Errorf("artifact: metadata %d: %w", id, err)
		}
		return Metadata{}, fmt.Errorf("artifact: metadata %d: %w: %v", id, apperr.ErrBackend, err)
	}

	md := Metadata{
		Name:        fmt.Sprintf("PUBLIC_TERMINAL #%d", id),
		Description: rec.Text,
		Attributes: []Attribute{
			{TraitType: "Author", Value: rec.Username},
			{TraitType: "FID", Value: strconv.FormatUint(rec.FID, 10)},
			{TraitType: "Color", Value: palette.FromBytes3(rec.Color)},
			{TraitType: "Timestamp", Value: rec.Time().Format(time.RFC3339)},
		},
	}
	if s.publicURL != "" {
		base := strings.TrimRight(s.publicURL, "/")
		md.ExternalURL = fmt.Sprintf("%s/artifact/%d", base, id)
		md.Image = fmt.Sprintf("%s/api/artifacts/%d.png", base, id)
	}
	return md, nil
}
