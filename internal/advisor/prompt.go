package advisor

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// queryPlaceholder marks where the user's raw text is embedded in the
// advice template.
const queryPlaceholder = "{{query}}"

// Templates holds the fixed texts the bot works with: the instructional
// prompt sent to the model and the canned replies. All of them can be
// overridden from YAML files; the built-in defaults are always complete.
type Templates struct {
	Advice  string `yaml:"advice"`
	Welcome string `yaml:"welcome"`
	Apology string `yaml:"apology"`
	Help    string `yaml:"help"`
}

func DefaultTemplates() Templates {
	return Templates{
		Advice: `You are a beauty expert chatbot specialized in providing advice on makeup and outfits for people with color blindness. Your suggestions consider their specific color vision deficiencies and recommend colors and combinations they can see.
Please suggest makeup and an outfit for an ideal summer day. Provide the suggestions in the following format:

Makeup:
1. [Item 1]: [Description]
2. [Item 2]: [Description]
...

Outfit:
1. [Item 1]: [Description]
2. [Item 2]: [Description]

This is the user request: {{query}}
`,
		Welcome: "Welcome to Visionary Fashion Bot! To get started, please send me your color blindness type and the occasion or context for which you need makeup and outfit suggestions.",
		Apology: "Sorry, I am unable to generate a response at the moment.",
		Help: `Send me your color blindness type and an occasion, and I'll reply with makeup and outfit suggestions, each with a picture.

Commands:
/start — Show the welcome message
/help — Show this message
/version — Show version info`,
	}
}

// AdvicePrompt builds the model prompt with the user's text embedded
// verbatim.
func (t Templates) AdvicePrompt(query string) string {
	return strings.ReplaceAll(t.Advice, queryPlaceholder, query)
}

// LoadTemplates returns the defaults overlaid with any YAML files found
// in dir. Each file may set any subset of the template fields; unset
// fields keep their previous value. A missing or empty dir is fine.
func LoadTemplates(dir string, logger *slog.Logger) Templates {
	templates := DefaultTemplates()
	if dir == "" {
		return templates
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		logger.Debug("prompts directory does not exist, using defaults", "dir", dir)
		return templates
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Warn("cannot read prompts dir, using defaults", "dir", dir, "err", err)
		return templates
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}

		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("cannot read template file", "path", path, "err", err)
			continue
		}

		var overlay Templates
		if err := yaml.Unmarshal(data, &overlay); err != nil {
			logger.Warn("cannot parse template file", "path", path, "err", err)
			continue
		}

		if overlay.Advice != "" {
			templates.Advice = overlay.Advice
		}
		if overlay.Welcome != "" {
			templates.Welcome = overlay.Welcome
		}
		if overlay.Apology != "" {
			templates.Apology = overlay.Apology
		}
		if overlay.Help != "" {
			templates.Help = overlay.Help
		}
		logger.Info("loaded template overrides", "path", path)
	}

	return templates
}
