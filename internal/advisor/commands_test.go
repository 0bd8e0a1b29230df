package advisor

import (
	"strings"
	"testing"
)

func TestParseCommandBasic(t *testing.T) {
	cmd := ParseCommand("/start")
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if cmd.Name != "start" {
		t.Errorf("expected name 'start', got %q", cmd.Name)
	}
	if len(cmd.Args) != 0 {
		t.Errorf("expected no args, got %v", cmd.Args)
	}
}

func TestParseCommandWithArgs(t *testing.T) {
	cmd := ParseCommand("/help me please")
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if cmd.Name != "help" {
		t.Errorf("expected name 'help', got %q", cmd.Name)
	}
	if len(cmd.Args) != 2 || cmd.Args[0] != "me" || cmd.Args[1] != "please" {
		t.Errorf("unexpected args: %v", cmd.Args)
	}
}

func TestParseCommandStripsBotMention(t *testing.T) {
	cmd := ParseCommand("/start@VisionaryFashionBot")
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if cmd.Name != "start" {
		t.Errorf("expected name 'start', got %q", cmd.Name)
	}
}

func TestParseCommandLowercasesName(t *testing.T) {
	cmd := ParseCommand("/START")
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if cmd.Name != "start" {
		t.Errorf("expected name 'start', got %q", cmd.Name)
	}
}

func TestParseCommandNotACommand(t *testing.T) {
	for _, text := range []string{
		"a party tonight",
		"",
		"   ",
		"start without slash",
	} {
		if cmd := ParseCommand(text); cmd != nil {
			t.Errorf("ParseCommand(%q) = %+v, expected nil", text, cmd)
		}
	}
}

func TestParseCommandLeadingWhitespace(t *testing.T) {
	cmd := ParseCommand("  /start  ")
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if cmd.Name != "start" {
		t.Errorf("expected name 'start', got %q", cmd.Name)
	}
}

func TestCommandReplyKnownCommands(t *testing.T) {
	p := NewPipeline(PipelineConfig{Templates: DefaultTemplates()})

	reply, ok := p.commandReply(&Command{Name: "start"})
	if !ok {
		t.Fatal("expected a reply for /start")
	}
	if reply != p.templates.Welcome {
		t.Errorf("expected welcome text, got %q", reply)
	}

	reply, ok = p.commandReply(&Command{Name: "help"})
	if !ok {
		t.Fatal("expected a reply for /help")
	}
	if reply != p.templates.Help {
		t.Errorf("expected help text, got %q", reply)
	}

	reply, ok = p.commandReply(&Command{Name: "version"})
	if !ok {
		t.Fatal("expected a reply for /version")
	}
	if !strings.Contains(reply, Version()) {
		t.Errorf("expected version string in reply, got %q", reply)
	}
}

func TestCommandReplyUnknownCommand(t *testing.T) {
	p := NewPipeline(PipelineConfig{Templates: DefaultTemplates()})

	reply, ok := p.commandReply(&Command{Name: "weather"})
	if ok {
		t.Errorf("expected no reply for unknown command, got %q", reply)
	}
}
