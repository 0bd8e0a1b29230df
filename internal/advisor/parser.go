package advisor

import (
	"strings"

	"fashionbot/internal/domain"
)

// Section labels the model is instructed to emit. The makeup section
// ends where a blank line followed by the outfit label begins; if the
// model reorders sections or drops the blank line, extraction degrades
// to fewer (or zero) items rather than failing. The output is
// adversarial free text, so every non-matching line is dropped silently.
const (
	makeupLabel = "Makeup:"
	outfitLabel = "Outfit:"
)

// Parse extracts the two recommendation lists from one model response.
// It is total: any input, including empty or entirely unstructured text,
// yields a (possibly empty) Recommendations, never an error.
func Parse(text string) domain.Recommendations {
	return domain.Recommendations{
		Makeup: parseItems(section(text, makeupLabel, outfitLabel)),
		Outfit: parseItems(section(text, outfitLabel, "")),
	}
}

// section returns the trimmed substring after a line-initial label,
// ending before the first blank line followed by endLabel, or at the
// end of text when no such boundary exists. Returns "" when the label
// is absent.
func section(text, label, endLabel string) string {
	start := labelIndex(text, label)
	if start < 0 {
		return ""
	}
	body := text[start+len(label):]
	if endLabel != "" {
		if end := strings.Index(body, "\n\n"+endLabel); end >= 0 {
			body = body[:end]
		}
	}
	return strings.TrimSpace(body)
}

// labelIndex finds the first occurrence of label at the start of a line.
func labelIndex(text, label string) int {
	offset := 0
	for {
		idx := strings.Index(text[offset:], label)
		if idx < 0 {
			return -1
		}
		idx += offset
		if idx == 0 || text[idx-1] == '\n' {
			return idx
		}
		offset = idx + len(label)
	}
}

func parseItems(section string) []domain.Item {
	if section == "" {
		return nil
	}
	var items []domain.Item
	for _, line := range strings.Split(section, "\n") {
		if item, ok := parseItemLine(line); ok {
			items = append(items, item)
		}
	}
	return items
}

// parseItemLine matches one "N. Name: Description" line. Name and
// description are used verbatim apart from surrounding whitespace; no
// normalization or deduplication happens here.
func parseItemLine(line string) (domain.Item, bool) {
	s := strings.TrimSpace(line)

	// Ordinal number followed by a period and a space.
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 || i+1 >= len(s) || s[i] != '.' || s[i+1] != ' ' {
		return domain.Item{}, false
	}
	s = s[i+2:]

	// Name runs to the first ": " separator; the rest is the description.
	sep := strings.Index(s, ": ")
	if sep < 0 {
		return domain.Item{}, false
	}

	name := strings.TrimSpace(s[:sep])
	if name == "" {
		return domain.Item{}, false
	}

	return domain.Item{
		Name:        name,
		Description: strings.TrimSpace(s[sep+2:]),
	}, true
}
