package channel

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateRunesShortCaptionUntouched(t *testing.T) {
	if got := truncateRunes("Lipstick: bold red", telegramMaxCaptionLen); got != "Lipstick: bold red" {
		t.Fatalf("short caption changed: %q", got)
	}
}

func TestTruncateRunesKeepsRuneBoundary(t *testing.T) {
	// A caption of multi-byte runes around the limit must stay valid
	// UTF-8 after truncation.
	caption := strings.Repeat("é", telegramMaxCaptionLen+10)
	got := truncateRunes(caption, telegramMaxCaptionLen)

	if !utf8.ValidString(got) {
		t.Fatal("truncated caption is not valid UTF-8")
	}
	if n := utf8.RuneCountInString(got); n != telegramMaxCaptionLen {
		t.Fatalf("expected %d characters, got %d", telegramMaxCaptionLen, n)
	}
}

func TestSplitMessageShortText(t *testing.T) {
	chunks := splitMessage("hello")
	if len(chunks) != 1 || chunks[0] != "hello" {
		t.Fatalf("unexpected chunks: %v", chunks)
	}
}

func TestSplitMessagePrefersNewline(t *testing.T) {
	first := strings.Repeat("a", telegramMaxMsgLen-100)
	text := first + "\n" + strings.Repeat("b", 300)

	chunks := splitMessage(text)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0] != first {
		t.Fatalf("first chunk should end before the newline, got %d bytes", len(chunks[0]))
	}
}

func TestSplitMessageRuneBoundary(t *testing.T) {
	text := strings.Repeat("日", telegramMaxMsgLen+50)

	chunks := splitMessage(text)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if !utf8.ValidString(c) {
			t.Fatalf("chunk %d is not valid UTF-8", i)
		}
		if utf8.RuneCountInString(c) > telegramMaxMsgLen {
			t.Fatalf("chunk %d exceeds the character limit", i)
		}
	}
	if strings.Join(chunks, "") != text {
		t.Fatal("chunks do not reassemble the original text")
	}
}
