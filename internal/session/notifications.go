package session

import "github.com/zulandar/pdfchat/internal/notify"

func invalidFileType() notify.Notification {
	return notify.Notification{
		Kind:     notify.KindInvalidFileType,
		Severity: notify.SeverityError,
		Title:    "Invalid file type",
		Detail:   "Please upload PDF files only.",
	}
}

func busy() notify.Notification {
	return notify.Notification{
		Kind:     notify.KindBusy,
		Severity: notify.SeverityError,
		Title:    "Please wait",
		Detail:   "A request is already in progress.",
	}
}

func noDocument() notify.Notification {
	return notify.Notification{
		Kind:     notify.KindNoDocument,
		Severity: notify.SeverityError,
		Title:    "No documents uploaded",
		Detail:   "Please upload PDF documents before asking questions.",
	}
}

func uploadSucceeded() notify.Notification {
	return notify.Notification{
		Kind:     notify.KindUploadSucceeded,
		Severity: notify.SeverityInfo,
		Title:    "Upload successful",
		Detail:   "Document(s) processed and summarized successfully.",
	}
}

func uploadRejected(message string) notify.Notification {
	return notify.Notification{
		Kind:     notify.KindUploadRejected,
		Severity: notify.SeverityError,
		Title:    "PDF Upload Error",
		Detail:   message,
	}
}

func uploadFailed(reason string) notify.Notification {
	if reason == "" {
		reason = "An unknown error occurred."
	}
	return notify.Notification{
		Kind:     notify.KindUploadFailed,
		Severity: notify.SeverityError,
		Title:    "Upload failed",
		Detail:   reason,
	}
}

func queryFailed(reason string) notify.Notification {
	if reason == "" {
		reason = "An unknown error occurred."
	}
	return notify.Notification{
		Kind:     notify.KindQueryFailed,
		Severity: notify.SeverityError,
		Title:    "Query failed",
		Detail:   reason,
	}
}

func historyExported(path string) notify.Notification {
	return notify.Notification{
		Kind:     notify.KindHistoryExported,
		Severity: notify.SeverityInfo,
		Title:    "Chat history saved",
		Detail:   path,
	}
}
