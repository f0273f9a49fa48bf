// Package models defines the domain types shared by the ledger readers,
// the feed assembler and the renderers.
package models

import "time"

// Limits enforced by the ledger's write path.
const (
	MaxUsernameLength = 64
	MaxTextLength     = 120
)

// Record is a minted message as stored on the ledger. Records are
// immutable; this module only reads them.
type Record struct {
	ID        uint64  `json:"id" yaml:"id"`
	Author    string  `json:"author" yaml:"author"`
	FID       uint64  `json:"fid" yaml:"fid"`
	Username  string  `json:"username" yaml:"username"`
	Text      string  `json:"text" yaml:"text"`
	Timestamp int64   `json:"timestamp" yaml:"timestamp"`
	Color     [3]byte `json:"-" yaml:"-"`
}

// Time returns the creation time in UTC.
func (r Record) Time() time.Time {
	return time.Unix(r.Timestamp, 0).UTC()
}

// Fallback carries record fields supplied by a client that just wrote the
// record and cannot wait for the read path to catch up.
type Fallback struct {
	Username  string `json:"username"`
	Text      string `json:"text"`
	Color     string `json:"color,omitempty"`
	Timestamp *int64 `json:"timestamp,omitempty"`
}

// Usable reports whether the fallback can stand in for a record.
func (f *Fallback) Usable() bool {
	return f != nil && f.Username != "" && f.Text != ""
}

// Entry is the presentation form of a record: color normalized and
// timestamp formatted.
type Entry struct {
	ID          uint64 `json:"id"`
	Username    string `json:"username"`
	Text        string `json:"text"`
	Color       string `json:"color"`
	Posted      int64  `json:"posted"`
	Stamp       string `json:"stamp"`
	Synthesized bool   `json:"synthesized,omitempty"`
}

// Window is an ascending run of entries around a target identifier.
type Window struct {
	Target  uint64  `json:"target"`
	Entries []Entry `json:"entries"`
	Total   *uint64 `json:"total,omitempty"`
}

// TargetEntry returns the entry for the target identifier.
func (w Window) TargetEntry() (Entry, bool) {
	for _, e := range w.Entries {
		if e.ID == w.Target {
			return e, true
		}
	}
	return Entry{}, false
}

// HasTarget reports whether the target resolved, from the ledger or from
// fallback data.
func (w Window) HasTarget() bool {
	_, ok := w.TargetEntry()
	return ok
}
