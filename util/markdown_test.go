package util

import (
	"context"
	"strings"
	"testing"
)

func TestMarkdown(t *testing.T) {
	var b1, b2 strings.Builder
	src := []byte("## Quick Install\n\n```bash\ncurl -fsSL https://clipper.tools/install.sh | bash\n```\n\n- <b>raw</b>\n")
	if err := Markdown(src).Render(context.Background(), &b1); err != nil {
		t.Fatal(err)
	}
	if err := Markdown(src).Render(context.Background(), &b2); err != nil {
		t.Fatal(err)
	}
	out := b1.String()
	if b2.String() != out {
		t.Error("cached render differs")
	}
	for _, want := range []string{"<h2", "Quick Install", "install.sh", "<pre"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "<b>raw</b>") {
		t.Error("raw HTML passed through unescaped")
	}
}
