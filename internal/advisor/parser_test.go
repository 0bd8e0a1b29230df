package advisor

import (
	"testing"
)

func TestParse_WellFormed(t *testing.T) {
	text := "Makeup:\n" +
		"1. Lipstick: bold red\n" +
		"2. Mascara: black, volumizing\n" +
		"\n" +
		"Outfit:\n" +
		"1. Scarf: blue silk\n" +
		"2. Dress: yellow sundress\n" +
		"3. Sandals: tan leather"

	recs := Parse(text)
	if len(recs.Makeup) != 2 {
		t.Fatalf("expected 2 makeup items, got %d", len(recs.Makeup))
	}
	if len(recs.Outfit) != 3 {
		t.Fatalf("expected 3 outfit items, got %d", len(recs.Outfit))
	}
	if recs.Makeup[0].Name != "Lipstick" || recs.Makeup[0].Description != "bold red" {
		t.Fatalf("unexpected first makeup item: %+v", recs.Makeup[0])
	}
	if recs.Outfit[2].Name != "Sandals" || recs.Outfit[2].Description != "tan leather" {
		t.Fatalf("unexpected last outfit item: %+v", recs.Outfit[2])
	}
}

func TestParse_PreservesNumericOrder(t *testing.T) {
	text := "Makeup:\n1. First: a\n2. Second: b\n3. Third: c\n\nOutfit:\n1. Only: x"
	recs := Parse(text)
	want := []string{"First", "Second", "Third"}
	if len(recs.Makeup) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(recs.Makeup))
	}
	for i, name := range want {
		if recs.Makeup[i].Name != name {
			t.Fatalf("item %d: expected %q, got %q", i, name, recs.Makeup[i].Name)
		}
	}
}

func TestParse_Empty(t *testing.T) {
	recs := Parse("")
	if !recs.Empty() {
		t.Fatalf("expected empty recommendations, got %+v", recs)
	}
}

func TestParse_NoRecognizableStructure(t *testing.T) {
	recs := Parse("no recognizable structure")
	if !recs.Empty() {
		t.Fatalf("expected empty recommendations, got %+v", recs)
	}
}

func TestParse_ApologyText(t *testing.T) {
	recs := Parse("Sorry, I am unable to generate a response at the moment.")
	if !recs.Empty() {
		t.Fatalf("apology text must not parse into items, got %+v", recs)
	}
}

func TestParse_MissingMakeupSection(t *testing.T) {
	recs := Parse("Outfit:\n1. Scarf: blue silk")
	if len(recs.Makeup) != 0 {
		t.Fatalf("expected no makeup items, got %+v", recs.Makeup)
	}
	if len(recs.Outfit) != 1 || recs.Outfit[0].Name != "Scarf" {
		t.Fatalf("unexpected outfit items: %+v", recs.Outfit)
	}
}

func TestParse_MissingOutfitSection(t *testing.T) {
	recs := Parse("Makeup:\n1. Lipstick: red")
	if len(recs.Makeup) != 1 {
		t.Fatalf("expected 1 makeup item, got %+v", recs.Makeup)
	}
	if len(recs.Outfit) != 0 {
		t.Fatalf("expected no outfit items, got %+v", recs.Outfit)
	}
}

func TestParse_DropsProseAndBlankLines(t *testing.T) {
	text := "Makeup:\n" +
		"Here are some suggestions for you!\n" +
		"1. Lipstick: coral\n" +
		"\n" +
		"hope that helps\n" +
		"2. Blush: peach tones\n" +
		"\n" +
		"Outfit:\n" +
		"1. Hat: wide brim"

	recs := Parse(text)
	if len(recs.Makeup) != 2 {
		t.Fatalf("expected 2 makeup items, got %+v", recs.Makeup)
	}
	if len(recs.Outfit) != 1 {
		t.Fatalf("expected 1 outfit item, got %+v", recs.Outfit)
	}
}

func TestParse_LabelMustBeLineInitial(t *testing.T) {
	text := "I recommend Makeup: things\nOutfit:\n1. Coat: wool"
	recs := Parse(text)
	if len(recs.Makeup) != 0 {
		t.Fatalf("mid-line label should not open a section, got %+v", recs.Makeup)
	}
	if len(recs.Outfit) != 1 {
		t.Fatalf("expected 1 outfit item, got %+v", recs.Outfit)
	}
}

func TestParse_NameVerbatim(t *testing.T) {
	recs := Parse("Makeup:\n1. Tinted Lip Balm (SPF 15): sheer rose\n\nOutfit:\n1. A: b")
	if len(recs.Makeup) != 1 {
		t.Fatalf("expected 1 item, got %+v", recs.Makeup)
	}
	if recs.Makeup[0].Name != "Tinted Lip Balm (SPF 15)" {
		t.Fatalf("name not verbatim: %q", recs.Makeup[0].Name)
	}
}

func TestParse_ColonInsideDescription(t *testing.T) {
	recs := Parse("Outfit:\n1. Top: crisp white: breathable cotton")
	if len(recs.Outfit) != 1 {
		t.Fatalf("expected 1 item, got %+v", recs.Outfit)
	}
	if recs.Outfit[0].Name != "Top" {
		t.Fatalf("name should stop at first separator, got %q", recs.Outfit[0].Name)
	}
	if recs.Outfit[0].Description != "crisp white: breathable cotton" {
		t.Fatalf("description should keep later colons, got %q", recs.Outfit[0].Description)
	}
}

func TestParse_LineWithoutSeparatorDropped(t *testing.T) {
	recs := Parse("Makeup:\n1. Lipstick bold red\n2. Blush: peach")
	if len(recs.Makeup) != 1 || recs.Makeup[0].Name != "Blush" {
		t.Fatalf("line without separator should be dropped, got %+v", recs.Makeup)
	}
}

func TestParse_MultiDigitOrdinals(t *testing.T) {
	recs := Parse("Outfit:\n10. Belt: brown leather")
	if len(recs.Outfit) != 1 || recs.Outfit[0].Name != "Belt" {
		t.Fatalf("multi-digit ordinal should match, got %+v", recs.Outfit)
	}
}

func TestParse_NoBlankLineBeforeOutfit(t *testing.T) {
	// Without the blank-line boundary the makeup section runs to end of
	// text; the outfit section is still located independently.
	// Unseparated model output degrades, it never errors.
	text := "Makeup:\n1. Lipstick: red\nOutfit:\n1. Scarf: blue"
	recs := Parse(text)
	if len(recs.Outfit) != 1 || recs.Outfit[0].Name != "Scarf" {
		t.Fatalf("outfit section should still be found: %+v", recs.Outfit)
	}
	// The outfit line also lands in the overrunning makeup section.
	if len(recs.Makeup) != 2 {
		t.Fatalf("expected makeup section to run to end of text, got %+v", recs.Makeup)
	}
}

func TestParseItemLine_EdgeCases(t *testing.T) {
	cases := []struct {
		line string
		ok   bool
		name string
	}{
		{"1. Lipstick: bold red", true, "Lipstick"},
		{"  2. Blush: peach", true, "Blush"},
		{"3.Blush: no space after period", false, ""},
		{"x. Blush: not a number", false, ""},
		{"4. : empty name", false, ""},
		{"5. NoSeparator", false, ""},
		{"", false, ""},
		{"just prose with 1. in it somewhere", false, ""},
	}
	for _, tc := range cases {
		item, ok := parseItemLine(tc.line)
		if ok != tc.ok {
			t.Errorf("%q: expected ok=%v, got %v", tc.line, tc.ok, ok)
			continue
		}
		if ok && item.Name != tc.name {
			t.Errorf("%q: expected name %q, got %q", tc.line, tc.name, item.Name)
		}
	}
}
