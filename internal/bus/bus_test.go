package bus

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"fashionbot/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestPublishSubscribe(t *testing.T) {
	b := New(4, testLogger())
	defer b.Close()

	b.Publish(domain.InboundMessage{ChatID: 42, Text: "hello"})

	select {
	case msg := <-b.Subscribe():
		if msg.ChatID != 42 || msg.Text != "hello" {
			t.Fatalf("unexpected message: %+v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestPublish_PreservesOrder(t *testing.T) {
	b := New(8, testLogger())
	defer b.Close()

	for i := 0; i < 5; i++ {
		b.Publish(domain.InboundMessage{ChatID: int64(i)})
	}
	for i := 0; i < 5; i++ {
		msg := <-b.Subscribe()
		if msg.ChatID != int64(i) {
			t.Fatalf("expected chat %d, got %d", i, msg.ChatID)
		}
	}
}

func TestPublish_AfterClose(t *testing.T) {
	b := New(1, testLogger())
	b.Close()
	// Must not panic on a closed bus.
	b.Publish(domain.InboundMessage{ChatID: 1})
}

func TestClose_Idempotent(t *testing.T) {
	b := New(1, testLogger())
	b.Close()
	b.Close()
}
