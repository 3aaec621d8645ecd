package models

// KeyInfo holds the structured fields extracted from a document's text.
// Any of the lists may be empty.
type KeyInfo struct {
	PaperCodes []string `json:"paper_codes"`
	Dates      []string `json:"dates"`
	Times      []string `json:"times"`
	Subjects   []string `json:"subjects"`
}

// AnalysisResult is the output of the document-analysis pipeline for one URL.
// A stage failure produces a partial result: whatever was computed so far,
// with Error set to the failing stage's reason.
type AnalysisResult struct {
	URL             string  `json:"url"`
	Summary         string  `json:"summary"`
	Category        string  `json:"category"`
	KeyInfo         KeyInfo `json:"key_info"`
	Language        string  `json:"language_detected"`
	Translated      bool    `json:"translated"`
	TranslatedTitle string  `json:"translated_title,omitempty"`
	Cached          bool    `json:"cached"`
	Error           string  `json:"error,omitempty"`
}
