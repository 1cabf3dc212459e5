package ai

import (
	"log/slog"
	"regexp"
	"strings"

	gojson "github.com/goccy/go-json"
)

// extractor pulls generated text out of one known response shape. ok is
// false when the shape is absent or yields nothing.
type extractor func(root *Value) (text string, ok bool)

var extractors = []extractor{
	candidatesText,
	outputsText,
	textFieldsText,
}

// ExtractText recovers the generated text from a raw generation response.
// Bodies that are not JSON, or match no known shape, are returned as is.
func ExtractText(raw string) string {
	root, err := ParseValue([]byte(raw))
	if err != nil {
		slog.Warn("failed to parse generated json, falling back to raw response", "err", err)
		return raw
	}
	for _, extract := range extractors {
		if text, ok := extract(root); ok {
			return text
		}
	}
	return raw
}

func candidatesText(root *Value) (string, bool) {
	candidates, ok := root.Get("candidates")
	if !ok || candidates.Kind != KindArray {
		return "", false
	}
	var texts []string
	for _, cand := range candidates.Items {
		if content, ok := cand.Get("content"); ok {
			texts = appendParts(texts, content)
		} else if output, ok := cand.Get("output"); ok {
			texts = append(texts, output.Text())
		}
	}
	return joinNonEmpty(texts)
}

func outputsText(root *Value) (string, bool) {
	outputs, ok := root.Get("outputs")
	if !ok || outputs.Kind != KindArray {
		return "", false
	}
	var texts []string
	for _, out := range outputs.Items {
		if content, ok := out.Get("content"); ok {
			texts = appendParts(texts, content)
		} else if text, ok := out.Get("text"); ok {
			texts = append(texts, text.Text())
		}
	}
	return joinNonEmpty(texts)
}

func textFieldsText(root *Value) (string, bool) {
	return joinNonEmpty(collectText(root, "text", nil))
}

// appendParts walks a content value. Content is either an array of parts,
// an object holding a parts array, or a single part.
func appendParts(texts []string, content *Value) []string {
	var parts []*Value
	switch content.Kind {
	case KindArray:
		parts = content.Items
	case KindObject:
		if p, ok := content.Get("parts"); ok && p.Kind == KindArray {
			parts = p.Items
		} else {
			parts = []*Value{content}
		}
	default:
		return append(texts, content.Text())
	}
	for _, part := range parts {
		if text, ok := part.Get("text"); ok {
			texts = append(texts, text.Text())
		} else {
			texts = append(texts, part.JSON())
		}
	}
	return texts
}

func joinNonEmpty(texts []string) (string, bool) {
	out := strings.TrimSpace(strings.Join(texts, "\n"))
	return out, out != ""
}

var (
	innerTextRE  = regexp.MustCompile(`"text"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	textKeyRE    = regexp.MustCompile(`"text"\s*:\s*"`)
	strayQuoteRE = regexp.MustCompile(`"[ \t]*,?`)
)

// SanitizeText unwraps generated text that is itself JSON, which happens when
// the generator double-encodes its output. Text that does not look like JSON
// is returned unchanged.
func SanitizeText(text string) string {
	if text == "" || !looksLikeJSON(text) {
		return text
	}

	root, err := ParseValue([]byte(text))
	if err == nil {
		if out, ok := textFieldsText(root); ok {
			return out
		}
	} else if m := innerTextRE.FindStringSubmatch(text); m != nil {
		var unescaped string
		if err := gojson.Unmarshal([]byte(`"`+m[1]+`"`), &unescaped); err == nil {
			return unescaped
		}
		slog.Warn("failed to sanitize generated json fragment")
	}

	cleaned := textKeyRE.ReplaceAllString(text, "")
	cleaned = strayQuoteRE.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}

func looksLikeJSON(text string) bool {
	trimmed := strings.TrimSpace(text)
	return strings.Contains(text, `"text"`) || strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")
}
