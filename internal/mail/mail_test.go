package mail

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"carteira/internal/core"
	"carteira/internal/log"
)

func TestWelcomeEscapesName(t *testing.T) {
	m, err := Welcome(core.User{Email: "ana@example.com", Name: "<b>Ana</b>"})
	if err != nil {
		t.Fatalf("welcome: %v", err)
	}
	if m.To != "ana@example.com" || m.Subject == "" {
		t.Fatalf("unexpected message: %+v", m)
	}
	if strings.Contains(m.HTML, "<b>Ana</b>") || !strings.Contains(m.HTML, "&lt;b&gt;Ana&lt;/b&gt;") {
		t.Fatalf("name not escaped: %s", m.HTML)
	}
}

func TestWelcomeDefaultName(t *testing.T) {
	m, _ := Welcome(core.User{Email: "x@y.z"})
	if !strings.Contains(m.HTML, core.DefaultUserName) {
		t.Fatalf("expected default name in %s", m.HTML)
	}
}

func TestStatement(t *testing.T) {
	m, err := Statement(core.User{Email: "a@b.c", Name: "Ana"},
		core.Money{Cents: 100000}, core.Money{Cents: 25050}, core.Money{Cents: 74950},
		"relatorio.pdf", []byte("%PDF-1.3"))
	if err != nil {
		t.Fatalf("statement: %v", err)
	}
	if !strings.Contains(m.HTML, "R$ 1.000,00") || !strings.Contains(m.HTML, "R$ 749,50") {
		t.Fatalf("amounts missing: %s", m.HTML)
	}
	if len(m.Attachments) != 1 || m.Attachments[0].Name != "relatorio.pdf" {
		t.Fatalf("attachment missing: %+v", m.Attachments)
	}
}

func TestBuildMessage(t *testing.T) {
	msg := build("noreply@carteira.app", Message{
		To: "a@b.c", Subject: "Oi", HTML: "<p>oi</p>",
		Attachments: []Attachment{{Name: "r.pdf", Data: []byte("%PDF-test")}},
	})
	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"From: noreply@carteira.app", "To: a@b.c", "Subject: Oi", `filename="r.pdf"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestSMTPMailerRejects(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "localhost", Port: 1, User: "u"})
	if err := m.Send(context.Background(), Message{}); err == nil {
		t.Fatalf("expected empty recipient error")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.Send(ctx, Message{To: "a@b.c"}); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if m.from != "u" {
		t.Fatalf("from should fall back to user, got %q", m.from)
	}
}

func TestLogMailer(t *testing.T) {
	if err := (LogMailer{Logger: log.Discard()}).Send(context.Background(), Message{To: "a@b.c"}); err != nil {
		t.Fatalf("log mailer: %v", err)
	}
}
