package log_test

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/mbolis/quick-forms/log"
)

func TestConfigure(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		_ = log.Configure(false, "text")
	})

	if err := log.Configure(true, "json"); err != nil {
		t.Fatalf("failed to configure: %v", err)
	}
	log.WithFields(log.Fields{"form": "f1"}).Debug("draft.save")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to decode entry %q: %v", buf.String(), err)
	}
	if entry["msg"] != "draft.save" || entry["form"] != "f1" || entry["level"] != "debug" {
		t.Errorf("unexpected entry %v", entry)
	}

	buf.Reset()
	if err := log.Configure(false, "TEXT"); err != nil {
		t.Fatalf("failed to configure: %v", err)
	}
	log.Debugf("hidden")
	log.Info("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("unexpected output %q", buf.String())
	}

	if err := log.Configure(false, "xml"); err == nil {
		t.Error("expected unknown format to fail")
	}
}
