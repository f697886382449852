package usecase

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Models frequently wrap JSON in prose or code fences despite being asked for
// raw JSON. The extraction chain tries an ordered list of parsers and stops at
// the first success, returning a tagged result instead of moving between
// tiers on parse panics or errors.

var fencedBlockRe = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")

// ExtractJSON runs the full fallback chain on free-form model output:
// the whole text as JSON, then the inner content of a fenced code block,
// then the substring between the first '{' and the last '}'.
func ExtractJSON(text string) (json.RawMessage, bool) {
	if raw, ok := parseDirect(text); ok {
		return raw, true
	}
	if raw, ok := parseFencedBlock(text); ok {
		return raw, true
	}
	return SliceBraces(text)
}

func parseDirect(text string) (json.RawMessage, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || !json.Valid([]byte(trimmed)) {
		return nil, false
	}
	return json.RawMessage(trimmed), true
}

func parseFencedBlock(text string) (json.RawMessage, bool) {
	match := fencedBlockRe.FindStringSubmatch(text)
	if match == nil {
		return nil, false
	}
	return parseDirect(match[1])
}

// SliceBraces parses the substring between the first '{' and the last '}'
// inclusive. Combined-analysis prompts instruct the model to return a bare
// JSON object, so this single tier is the whole extraction for them.
func SliceBraces(text string) (json.RawMessage, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start == -1 || end == -1 || end < start {
		return nil, false
	}
	return parseDirect(text[start : end+1])
}
