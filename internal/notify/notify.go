// Package notify carries user-facing notification events from the session
// controller to whatever presents them: a terminal, a desktop hook, or the
// web front-end's event stream.
package notify

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Kind discriminates notifications.
type Kind string

const (
	KindInvalidFileType Kind = "invalid_file_type"
	KindBusy            Kind = "busy"
	KindNoDocument      Kind = "no_document"
	KindUploadSucceeded Kind = "upload_succeeded"
	KindUploadRejected  Kind = "upload_rejected"
	KindUploadFailed    Kind = "upload_failed"
	KindQueryFailed     Kind = "query_failed"
	KindHistoryExported Kind = "history_exported"
)

// Severity hints how prominently a notification should be shown.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityError Severity = "error"
)

// Notification is a single user-facing event.
type Notification struct {
	Kind     Kind      `json:"kind"`
	Severity Severity  `json:"severity"`
	Title    string    `json:"title"`
	Detail   string    `json:"detail"`
	Time     time.Time `json:"time"`
}

// Notifier receives notifications. Implementations must not block for long;
// they are called from the controller's intent handlers.
type Notifier interface {
	Notify(n Notification)
}

// Func adapts a plain function to the Notifier interface.
type Func func(Notification)

// Notify calls f(n).
func (f Func) Notify(n Notification) { f(n) }

// Discard drops every notification.
var Discard Notifier = Func(func(Notification) {})

// Multi fans a notification out to every non-nil notifier in order.
type Multi []Notifier

// Notify delivers n to each notifier.
func (m Multi) Notify(n Notification) {
	for _, nt := range m {
		if nt != nil {
			nt.Notify(n)
		}
	}
}

// Writer renders notifications as single lines on a stream, e.g. stderr.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter returns a Writer notifier printing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Notify prints "! title: detail" for errors and "* title: detail" otherwise.
func (w *Writer) Notify(n Notification) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintln(w.w, Format(n))
}

// Format renders a notification on one line.
func Format(n Notification) string {
	marker := "*"
	if n.Severity == SeverityError {
		marker = "!"
	}
	if n.Detail == "" {
		return fmt.Sprintf("%s %s", marker, n.Title)
	}
	return fmt.Sprintf("%s %s: %s", marker, n.Title, n.Detail)
}
