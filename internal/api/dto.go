package api

import (
	"github.com/starford/terminalart/internal/artifact"
	"github.com/starford/terminalart/internal/mirror"
)

// PreviewRequest is the POST /api/preview body.
type PreviewRequest struct {
	Type      string             `json:"type"`
	Username  string             `json:"username"`
	Text      string             `json:"text"`
	Timestamp int64              `json:"timestamp"`
	Color     string             `json:"color"`
	Messages  []artifact.Message `json:"messages"`
}

// StageRecordRequest is the POST /api/records body.
type StageRecordRequest struct {
	ID        uint64 `json:"id"`
	Author    string `json:"author"`
	FID       uint64 `json:"fid"`
	Username  string `json:"username"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
	Color     string `json:"color"`
}

// StageRecordResponse acknowledges a staged record.
type StageRecordResponse struct {
	ID     uint64 `json:"id"`
	Status string `json:"status"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []mirror.SearchResult `json:"results"`
}
