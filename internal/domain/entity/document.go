package entity

import "time"

// Document is the persisted form of a document in some lifecycle stage.
// Stage records which state variant the row deserializes into; Metadata is
// the payload metadata serialized as JSON.
type Document struct {
	ID          int64      `json:"id"`
	PublicID    string     `json:"public_id"`
	Title       string     `json:"title"`
	AuthorID    string     `json:"author_id"`
	Stage       string     `json:"stage"`
	Body        string     `json:"body"`
	Metadata    string     `json:"metadata"`
	Approvals   int        `json:"approvals"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
