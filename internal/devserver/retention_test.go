package devserver

import (
	"strings"
	"testing"
	"time"

	"github.com/zulandar/pdfchat/internal/attachment"
)

func TestValidateSchedule(t *testing.T) {
	tests := []struct {
		expr    string
		wantErr bool
	}{
		{"0 * * * *", false},
		{"*/15 * * * *", false},
		{"0 3 * * 1", false},
		{"not a cron expr", true},
		{"", true},
		{"0 0 * * * *", true}, // seconds field not accepted
	}
	for _, tt := range tests {
		err := ValidateSchedule(tt.expr)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateSchedule(%q) err = %v, wantErr %v", tt.expr, err, tt.wantErr)
		}
	}
}

func TestNewRetention_Validation(t *testing.T) {
	s, _ := newTestStore(t)

	if _, err := NewRetention(nil, "0 * * * *", time.Hour, nil); err == nil {
		t.Error("expected error for nil store")
	}
	if _, err := NewRetention(s, "0 * * * *", 0, nil); err == nil || !strings.Contains(err.Error(), "ttl") {
		t.Errorf("zero ttl error = %v", err)
	}
	if _, err := NewRetention(s, "bogus", time.Hour, nil); err == nil || !strings.Contains(err.Error(), "bogus") {
		t.Errorf("bad schedule error = %v", err)
	}
}

func TestRetention_RunOnce(t *testing.T) {
	s, _ := newTestStore(t)
	if _, err := s.Replace([]attachment.File{attachment.New("doc.pdf", pdfBytes)}); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	r, err := NewRetention(s, "0 * * * *", time.Hour, quietLogger())
	if err != nil {
		t.Fatalf("NewRetention: %v", err)
	}

	n, err := r.RunOnce()
	if err != nil || n != 0 {
		t.Fatalf("RunOnce (fresh) = (%d, %v), want (0, nil)", n, err)
	}

	r.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	n, err = r.RunOnce()
	if err != nil || n != 1 {
		t.Errorf("RunOnce (expired) = (%d, %v), want (1, nil)", n, err)
	}
}

func TestRetention_StartStop(t *testing.T) {
	s, _ := newTestStore(t)
	r, err := NewRetention(s, "0 * * * *", time.Hour, quietLogger())
	if err != nil {
		t.Fatalf("NewRetention: %v", err)
	}
	r.Start()
	r.Stop()
}
