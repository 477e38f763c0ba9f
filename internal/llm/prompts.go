// Copyright The pii-redact Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"strings"

	"pii-redact/internal/categories"
)

// verifyInstruction is appended on the verification re-pass.
const verifyInstruction = "\n\nIMPORTANT: This is a final verification pass. The text already " +
	"contains some redacted PII. Check VERY CAREFULLY for any remaining PII that might have been missed."

// buildRedactionPrompt builds the rewrite prompt: category descriptions,
// the replacement mapping (honoring per-request tag overrides), and the
// input text. The model is instructed to return only the rewritten text.
func buildRedactionPrompt(text string, cats []categories.Category, tags map[categories.Category]string) string {
	var descriptions, mapping []string
	for _, cat := range cats {
		def := categories.Lookup(cat)
		descriptions = append(descriptions, "- "+def.Key+": "+def.Description)

		tag := def.Tag
		if t, ok := tags[cat]; ok {
			tag = t
		}
		mapping = append(mapping, "- "+def.Key+" -> "+tag)
	}

	var b strings.Builder
	b.WriteString("You are a PII (Personally Identifiable Information) redaction expert. ")
	b.WriteString("Your task is to identify and replace specific types of PII in the given text.\n\n")
	b.WriteString("TYPES OF PII TO DETECT AND REDACT:\n")
	b.WriteString(strings.Join(descriptions, "\n"))
	b.WriteString("\n\nREPLACEMENT MAPPING:\n")
	b.WriteString(strings.Join(mapping, "\n"))
	b.WriteString("\n\nINSTRUCTIONS:\n")
	b.WriteString("1. Carefully analyze the text and identify all instances of the specified PII types\n")
	b.WriteString("2. Replace each identified PII with the corresponding replacement tag\n")
	b.WriteString("3. Maintain the original text structure and formatting\n")
	b.WriteString("4. Be thorough but avoid false positives\n")
	b.WriteString("5. For names, consider context to avoid redacting common words that happen to be names\n")
	b.WriteString("6. For addresses, redact complete addresses including street, city, state, zip\n")
	b.WriteString("7. For dates, focus on personal dates like birth dates, not general dates\n\n")
	b.WriteString("INPUT TEXT:\n")
	b.WriteString(text)
	b.WriteString("\n\nPlease provide the redacted text with all specified PII types replaced with their ")
	b.WriteString("corresponding tags. Return ONLY the redacted text, no explanations or additional text.")
	return b.String()
}

// buildAnalysisPrompt asks for per-category counts as a bare JSON object.
func buildAnalysisPrompt(text string, cats []categories.Category) string {
	var descriptions, fields []string
	for _, cat := range cats {
		def := categories.Lookup(cat)
		descriptions = append(descriptions, "- "+def.Key+": "+def.Description)
		fields = append(fields, `  "`+def.Key+`": 0`)
	}

	var b strings.Builder
	b.WriteString("You are a PII (Personally Identifiable Information) detection expert. ")
	b.WriteString("Analyze the given text and identify all instances of the specified PII types.\n\n")
	b.WriteString("TYPES OF PII TO DETECT:\n")
	b.WriteString(strings.Join(descriptions, "\n"))
	b.WriteString("\n\nINSTRUCTIONS:\n")
	b.WriteString("1. Carefully analyze the text and identify all instances of the specified PII types\n")
	b.WriteString("2. Count how many instances of each PII type you find\n")
	b.WriteString("3. Be thorough but avoid false positives\n")
	b.WriteString("4. Consider context when identifying names vs common words\n\n")
	b.WriteString("INPUT TEXT:\n")
	b.WriteString(text)
	b.WriteString("\n\nPlease provide a JSON response with the count of each PII type found, in this exact format:\n{\n")
	b.WriteString(strings.Join(fields, ",\n"))
	b.WriteString("\n}\n\nReturn ONLY the JSON response, no additional text.")
	return b.String()
}

// stripFences removes a surrounding markdown code fence if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) < 3 {
		return s
	}
	if strings.HasPrefix(lines[len(lines)-1], "```") {
		lines = lines[1 : len(lines)-1]
	} else {
		lines = lines[1:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
