package event

// Type identifies the type of domain event
type Type string

const (
	TypeDocumentCreated   Type = "document.created"
	TypeDocumentSubmitted Type = "document.submitted"
	TypeDocumentApproved  Type = "document.approved"
	TypeDocumentRejected  Type = "document.rejected"
	TypeDocumentPublished Type = "document.published"
	TypeStageChanged      Type = "document.stage_changed"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeDocumentCreated,
		TypeDocumentSubmitted,
		TypeDocumentApproved,
		TypeDocumentRejected,
		TypeDocumentPublished,
		TypeStageChanged:
		return true
	default:
		return false
	}
}
