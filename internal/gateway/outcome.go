package gateway

// UploadStatus discriminates an UploadOutcome.
type UploadStatus int

const (
	// UploadSucceeded means the service accepted and summarized the documents.
	UploadSucceeded UploadStatus = iota
	// UploadRejected means the transport succeeded but the service reported
	// an error or partial status with a human-readable message.
	UploadRejected
	// UploadNetworkFailure covers non-2xx responses, undecodable bodies and
	// transport errors.
	UploadNetworkFailure
)

func (s UploadStatus) String() string {
	switch s {
	case UploadSucceeded:
		return "success"
	case UploadRejected:
		return "rejected"
	case UploadNetworkFailure:
		return "network_failure"
	default:
		return "unknown"
	}
}

// UploadOutcome is the normalized result of an upload attempt. DocumentName
// and Summary are set only on success; Reason only on failure.
type UploadOutcome struct {
	Status       UploadStatus
	DocumentName string
	Summary      string
	Reason       string
}

// Succeeded builds a success outcome.
func Succeeded(documentName, summary string) UploadOutcome {
	return UploadOutcome{Status: UploadSucceeded, DocumentName: documentName, Summary: summary}
}

// Rejected builds a backend-rejected outcome.
func Rejected(reason string) UploadOutcome {
	return UploadOutcome{Status: UploadRejected, Reason: reason}
}

// NetworkFailure builds a transport-level failure outcome.
func NetworkFailure(reason string) UploadOutcome {
	return UploadOutcome{Status: UploadNetworkFailure, Reason: reason}
}

// QueryOutcome is the normalized result of a question. Answered is false
// when the call failed, in which case Reason explains why.
type QueryOutcome struct {
	Answered bool
	Text     string
	Reason   string
}

// Answer builds a successful query outcome.
func Answer(text string) QueryOutcome {
	return QueryOutcome{Answered: true, Text: text}
}

// Failed builds a failed query outcome.
func Failed(reason string) QueryOutcome {
	return QueryOutcome{Reason: reason}
}
