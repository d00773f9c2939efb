package models

// DraftMode records which composer path produced an EmailDraft.
type DraftMode string

const (
	DraftGenerated DraftMode = "generated"
	DraftFallback  DraftMode = "fallback"
)

// EmailDraft is a composed email pending delivery.
type EmailDraft struct {
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Mode      DraftMode `json:"mode"`
	WordCount int       `json:"word_count"`
}
