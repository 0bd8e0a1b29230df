package advisor

import (
	"fmt"
	"strings"
)

// Command is a parsed "/"-prefixed chat command.
type Command struct {
	Name string   // command name without "/"
	Args []string // arguments after the command
	Raw  string   // original full text
}

// ParseCommand checks if a message starts with "/" and parses it into a
// Command. Returns nil if the message is not a command.
func ParseCommand(text string) *Command {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return nil
	}

	parts := strings.Fields(text)
	if len(parts) == 0 {
		return nil
	}

	name := strings.TrimPrefix(parts[0], "/")
	// Telegram clients may append the bot username: "/start@SomeBot".
	if at := strings.Index(name, "@"); at >= 0 {
		name = name[:at]
	}
	name = strings.ToLower(name)

	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}

	return &Command{
		Name: name,
		Args: args,
		Raw:  text,
	}
}

// commandReply returns the canned response for a recognized command.
// Unrecognized commands get no reply at all and are never forwarded to
// the model or the image search.
func (p *Pipeline) commandReply(cmd *Command) (string, bool) {
	switch cmd.Name {
	case "start":
		return p.templates.Welcome, true
	case "help":
		return p.templates.Help, true
	case "version":
		return fmt.Sprintf("Visionary Fashion Bot v%s", version), true
	default:
		return "", false
	}
}

// version is set by the build system. Default fallback.
var version = "0.1.0"

// SetVersion sets the version string reported by /version.
func SetVersion(v string) {
	version = v
}

// Version returns the current version string.
func Version() string {
	return version
}
