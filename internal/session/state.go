package session

import "github.com/zulandar/pdfchat/internal/models"

// Phase is the document lifecycle state. Querying is the busy sub-state of
// a ready document; it never changes which document is loaded.
type Phase int

const (
	NoDocument Phase = iota
	Uploading
	Ready
	Querying
)

func (p Phase) String() string {
	switch p {
	case NoDocument:
		return "no_document"
	case Uploading:
		return "uploading"
	case Ready:
		return "ready"
	case Querying:
		return "querying"
	default:
		return "unknown"
	}
}

func (p Phase) inFlight() bool {
	return p == Uploading || p == Querying
}

// Snapshot is a point-in-time copy of session state for rendering.
type Snapshot struct {
	Phase        Phase            `json:"-"`
	DocumentName string           `json:"document_name,omitempty"`
	Messages     []models.Message `json:"messages"`
}

// DocumentReady reports whether a document is loaded and questions may be
// asked once no request is in flight.
func (s Snapshot) DocumentReady() bool {
	return s.Phase == Ready || s.Phase == Querying
}

// UploadInFlight reports whether an upload has been sent and not resolved.
func (s Snapshot) UploadInFlight() bool {
	return s.Phase == Uploading
}

// QueryInFlight reports whether a question has been sent and not resolved.
func (s Snapshot) QueryInFlight() bool {
	return s.Phase == Querying
}

// CanSend reports whether SendMessage would accept a non-empty question.
func (s Snapshot) CanSend() bool {
	return s.Phase == Ready
}

// Placeholder is the input hint matching the current phase.
func (s Snapshot) Placeholder() string {
	if s.DocumentReady() {
		return "Ask a question about your document..."
	}
	return "Upload a PDF to start chatting"
}
