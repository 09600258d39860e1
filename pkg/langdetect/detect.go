// Package langdetect guesses the language of unlabeled code blocks.
// It wraps go-enry with a few fast-path heuristics for the languages that
// dominate note files: lua, go, python, shell, and structured data.
package langdetect

import (
	"bytes"

	"github.com/go-enry/go-enry/v2"
)

const langText = "text"

// classifierCandidates bounds the classifier search to languages a note
// file plausibly contains.
var classifierCandidates = []string{
	"Lua", "Go", "Python", "Shell", "JavaScript", "TypeScript",
	"Rust", "C", "SQL", "JSON", "YAML", "HTML", "Vim Script",
}

// Detect returns a lowercase language name for the snippet, or "text" when
// nothing can be said with confidence.
func Detect(content []byte) string {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 {
		return langText
	}

	if lang, ok := enry.GetLanguageByShebang(content); ok {
		return normalize(lang)
	}
	if lang := detectByHeuristic(trimmed); lang != "" {
		return lang
	}
	if lang, ok := enry.GetLanguageByClassifier(content, classifierCandidates); ok && lang != "" {
		return normalize(lang)
	}
	return langText
}

// detectByHeuristic short-circuits the classifier for unmistakable snippets.
func detectByHeuristic(trimmed []byte) string {
	switch {
	case bytes.HasPrefix(trimmed, []byte("package ")) && bytes.Contains(trimmed, []byte("func ")):
		return "go"
	case bytes.HasPrefix(trimmed, []byte("local ")) || bytes.Contains(trimmed, []byte("require(\"")):
		return "lua"
	case bytes.HasPrefix(trimmed, []byte("def ")) || bytes.HasPrefix(trimmed, []byte("import ")):
		return "python"
	case bytes.HasPrefix(trimmed, []byte("{")) && bytes.HasSuffix(trimmed, []byte("}")) &&
		bytes.Contains(trimmed, []byte("\":")):
		return "json"
	case bytes.HasPrefix(trimmed, []byte("SELECT ")) || bytes.HasPrefix(trimmed, []byte("select ")):
		return "sql"
	case bytes.HasPrefix(trimmed, []byte("<!DOCTYPE")) || bytes.HasPrefix(trimmed, []byte("<html")):
		return "html"
	}
	return ""
}

// normalize maps enry's display names to the lowercase identifiers used in
// fence info strings.
func normalize(lang string) string {
	switch lang {
	case "Go":
		return "go"
	case "Lua":
		return "lua"
	case "Python":
		return "python"
	case "Shell":
		return "bash"
	case "JavaScript":
		return "javascript"
	case "TypeScript":
		return "typescript"
	case "Rust":
		return "rust"
	case "C":
		return "c"
	case "SQL":
		return "sql"
	case "JSON":
		return "json"
	case "YAML":
		return "yaml"
	case "HTML":
		return "html"
	case "Vim Script":
		return "vim"
	case "":
		return langText
	default:
		return langText
	}
}
