package transporters

import (
	"bytes"
	"strings"
	"testing"

	"rethread/pkg/log"
)

func TestText_Write_RendersSingleLine(t *testing.T) {
	var buf bytes.Buffer
	transporter := NewTextWithWriter(&buf)

	entry := log.Entry{
		Level:   log.Warn,
		Message: "skipping record",
		Fields:  map[string]any{"offset": 42},
	}

	if err := transporter.Write(entry); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got := buf.String()
	want := "Warn: skipping record offset=42\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestText_Write_OneLinePerEntry(t *testing.T) {
	var buf bytes.Buffer
	transporter := NewTextWithWriter(&buf)

	transporter.Write(log.Entry{Level: log.Info, Message: "first"})
	transporter.Write(log.Entry{Level: log.Info, Message: "second"})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Errorf("line count = %d, want 2", len(lines))
	}
}

func TestText_Name_ReturnsText(t *testing.T) {
	transporter := NewText()
	if transporter.Name() != "text" {
		t.Errorf("Name() = %q, want %q", transporter.Name(), "text")
	}
}

func TestText_Close_IsNoOp(t *testing.T) {
	transporter := NewText()
	if err := transporter.Close(); err != nil {
		t.Errorf("Close() error = %v, want nil", err)
	}
}
