package notify

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		n    Notification
		want string
	}{
		{"error with detail", Notification{Severity: SeverityError, Title: "Upload failed", Detail: "service unreachable"}, "! Upload failed: service unreachable"},
		{"info with detail", Notification{Severity: SeverityInfo, Title: "Upload successful", Detail: "done"}, "* Upload successful: done"},
		{"no detail", Notification{Severity: SeverityInfo, Title: "Exported"}, "* Exported"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.n); got != tt.want {
				t.Errorf("Format = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Notify(Notification{Severity: SeverityError, Title: "Invalid file type", Detail: "Please upload PDF files only."})
	w.Notify(Notification{Severity: SeverityInfo, Title: "Upload successful"})

	want := "! Invalid file type: Please upload PDF files only.\n* Upload successful\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestMulti_DeliversInOrderAndSkipsNil(t *testing.T) {
	var got []string
	a := Func(func(n Notification) { got = append(got, "a:"+n.Title) })
	b := Func(func(n Notification) { got = append(got, "b:"+n.Title) })

	Multi{a, nil, b}.Notify(Notification{Title: "x"})

	if strings.Join(got, ",") != "a:x,b:x" {
		t.Errorf("delivery = %v, want [a:x b:x]", got)
	}
}

func TestDiscard(t *testing.T) {
	Discard.Notify(Notification{Title: "ignored"})
}

type recordedRun struct {
	env  []string
	name string
	args []string
}

func newTestCommand(template string, runErr error) (*Command, *[]recordedRun) {
	var (
		mu   sync.Mutex
		runs []recordedRun
	)
	c := NewCommand(template, slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.run = func(env []string, name string, args ...string) ([]byte, error) {
		mu.Lock()
		defer mu.Unlock()
		runs = append(runs, recordedRun{env: env, name: name, args: args})
		return []byte("boom"), runErr
	}
	return c, &runs
}

func TestCommand_RunsTemplate(t *testing.T) {
	t.Setenv("TMUX", "")
	c, runs := newTestCommand("notify-send '{{.Title}}' '{{.Detail}}' --urgency={{.Severity}} # {{.Kind}}", nil)

	c.Notify(Notification{Kind: KindQueryFailed, Severity: SeverityError, Title: "Query failed", Detail: "it's down"})
	c.Wait()

	if len(*runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(*runs))
	}
	r := (*runs)[0]
	if r.name != "sh" || len(r.args) != 2 || r.args[0] != "-c" {
		t.Fatalf("run = %+v, want sh -c <cmd>", r)
	}
	want := `notify-send 'Query failed' 'it'\''s down' --urgency=error # query_failed`
	if r.args[1] != want {
		t.Errorf("command = %q, want %q", r.args[1], want)
	}
}

func TestCommand_ExportsValuesAsEnv(t *testing.T) {
	t.Setenv("TMUX", "")
	c, runs := newTestCommand(`logger "$PDFCHAT_NOTIFY_DETAIL"`, nil)

	detail := "bad $(rm -rf ~) `x` \"quoted\""
	c.Notify(Notification{Kind: KindUploadRejected, Severity: SeverityError, Title: "PDF Upload Error", Detail: detail})
	c.Wait()

	if len(*runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(*runs))
	}
	r := (*runs)[0]
	if r.args[1] != `logger "$PDFCHAT_NOTIFY_DETAIL"` {
		t.Errorf("command = %q, want template unchanged", r.args[1])
	}
	wantEnv := map[string]bool{
		EnvTitle + "=PDF Upload Error": true,
		EnvDetail + "=" + detail:       true,
		EnvKind + "=upload_rejected":   true,
		EnvSeverity + "=error":         true,
	}
	for _, kv := range r.env {
		delete(wantEnv, kv)
	}
	if len(wantEnv) != 0 {
		t.Errorf("env = %q, missing %v", r.env, wantEnv)
	}
}

func TestCommand_DoesNotBlockCaller(t *testing.T) {
	t.Setenv("TMUX", "")
	release := make(chan struct{})
	c := NewCommand("slow", slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.run = func(env []string, name string, args ...string) ([]byte, error) {
		<-release
		return nil, nil
	}

	done := make(chan struct{})
	go func() {
		c.Notify(Notification{Title: "x"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify blocked on a running hook")
	}
	close(release)
	c.Wait()
}

func TestCommand_EmptyTemplateOutsideTmux(t *testing.T) {
	t.Setenv("TMUX", "")
	c, runs := newTestCommand("", nil)
	c.Notify(Notification{Title: "x"})
	c.Wait()
	if len(*runs) != 0 {
		t.Errorf("runs = %d, want 0", len(*runs))
	}
}

func TestCommand_TmuxMessage(t *testing.T) {
	t.Setenv("TMUX", "/tmp/tmux-1000/default,1,0")
	c, runs := newTestCommand("", errors.New("no server"))
	c.Notify(Notification{Title: "Upload successful"})
	c.Wait()

	if len(*runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(*runs))
	}
	r := (*runs)[0]
	if r.name != "tmux" || r.args[0] != "display-message" || r.args[1] != "pdfchat: Upload successful" {
		t.Errorf("run = %+v, want tmux display-message", r)
	}
}

func TestBroker_FanOut(t *testing.T) {
	b := NewBroker(0)
	ch1, cancel1 := b.Subscribe()
	ch2, cancel2 := b.Subscribe()
	defer cancel1()
	defer cancel2()

	if b.Subscribers() != 2 {
		t.Fatalf("Subscribers = %d, want 2", b.Subscribers())
	}

	b.Notify(Notification{Kind: KindUploadSucceeded, Title: "Upload successful"})

	for i, ch := range []<-chan Notification{ch1, ch2} {
		select {
		case n := <-ch:
			if n.Kind != KindUploadSucceeded {
				t.Errorf("sub %d got kind %q", i, n.Kind)
			}
		case <-time.After(time.Second):
			t.Fatalf("sub %d did not receive notification", i)
		}
	}
}

func TestBroker_FullSubscriberDoesNotBlock(t *testing.T) {
	b := NewBroker(1)
	ch, cancel := b.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		b.Notify(Notification{Title: "1"})
		b.Notify(Notification{Title: "2"})
		b.Notify(Notification{Title: "3"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked on a full subscriber")
	}
	if n := <-ch; n.Title != "1" {
		t.Errorf("first event = %q, want 1", n.Title)
	}
}

func TestBroker_CancelClosesAndIsIdempotent(t *testing.T) {
	b := NewBroker(1)
	ch, cancel := b.Subscribe()
	cancel()
	cancel()

	if _, ok := <-ch; ok {
		t.Error("channel should be closed after cancel")
	}
	if b.Subscribers() != 0 {
		t.Errorf("Subscribers = %d, want 0", b.Subscribers())
	}
	b.Notify(Notification{Title: "after cancel"})
}
