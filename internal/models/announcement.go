package models

import "time"

// Announcement is the unit of record: one document published on the
// examination-announcements page. The id is assigned by the store at insert
// time and doubles as the recency key (smaller id = discovered earlier).
type Announcement struct {
	ID              int64     `json:"id"`
	DateText        string    `json:"date_text"`
	Title           string    `json:"title"`
	URL             string    `json:"url"`
	CrawledAt       time.Time `json:"crawled_at"`
	Summary         string    `json:"summary,omitempty"`
	Category        string    `json:"category,omitempty"`
	TranslatedTitle string    `json:"translated_title,omitempty"`
}

// CandidateLink is a link discovered on the listing page, not yet stored.
type CandidateLink struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	DateText string `json:"date_text"`
}

// SyncStats summarizes one completed sync cycle.
type SyncStats struct {
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
	MaxLimit  int    `json:"max_limit"`
	Deleted   int    `json:"deleted"`
	Message   string `json:"message,omitempty"`
}
