package markup

import "testing"

func TestParseLineKinds(t *testing.T) {
	desc := "📌 Alışveriş\n• süt\n1. ekmek al\n☐ kargo\n✓ fatura\ndüz metin"
	lines := Parse(desc)
	want := []LineKind{Header, Bullet, Numbered, CheckboxOpen, CheckboxDone, Plain}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(lines))
	}
	for i, k := range want {
		if lines[i].Kind != k {
			t.Fatalf("line %d: want kind %d, got %d (%+v)", i, k, lines[i].Kind, lines[i])
		}
	}
	if lines[1].Text != "süt" {
		t.Fatalf("bullet text: %q", lines[1].Text)
	}
	if lines[2].Number != 1 || lines[2].Text != "ekmek al" {
		t.Fatalf("numbered line: %+v", lines[2])
	}
}

func TestParseEmptyAndPlain(t *testing.T) {
	if Parse("") != nil {
		t.Fatalf("empty description parses to nil")
	}
	lines := Parse("just words\n2b. not a number")
	for _, l := range lines {
		if l.Kind != Plain {
			t.Fatalf("expected plain, got %+v", l)
		}
	}
}

func TestRenderKeepsLineCount(t *testing.T) {
	desc := "• a\n✓ b\nc"
	out := Render(desc)
	n := 1
	for _, r := range out {
		if r == '\n' {
			n++
		}
	}
	if n != 3 {
		t.Fatalf("expected 3 rendered lines, got %d:\n%s", n, out)
	}
}
