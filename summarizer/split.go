package summarizer

import (
	"regexp"
	"strings"
)

var (
	paragraphRE = regexp.MustCompile(`\n{2,}`)
	sentenceRE  = regexp.MustCompile(`(?s)(.*?[.!?])(?:\s+|$)`)
)

// SplitChunks splits transcript text into ordered chunks of at most limit
// characters. Boundaries fall between paragraphs when possible, then
// between sentences, then between words; a word is never cut. Chunks are
// non-overlapping and concatenating them (whitespace aside) reproduces the
// input.
func SplitChunks(text string, limit int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= limit {
		return []string{text}
	}

	var parts []string
	for _, para := range paragraphRE.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if len(para) <= limit {
			parts = append(parts, para)
			continue
		}
		parts = append(parts, splitOversized(para, limit)...)
	}

	return pack(parts, limit)
}

// splitOversized breaks a paragraph longer than limit at sentence
// boundaries, falling back to word boundaries for run-on sentences.
func splitOversized(para string, limit int) []string {
	var sentences []string
	consumed := 0
	for _, m := range sentenceRE.FindAllStringSubmatch(para, -1) {
		sentences = append(sentences, strings.TrimSpace(m[1]))
		consumed += len(m[0])
	}
	if rest := strings.TrimSpace(para[consumed:]); rest != "" {
		sentences = append(sentences, rest)
	}

	var parts []string
	for _, sentence := range sentences {
		if len(sentence) <= limit {
			parts = append(parts, sentence)
			continue
		}
		parts = append(parts, splitWords(sentence, limit)...)
	}
	return parts
}

// splitWords greedily packs words up to limit. A single word longer than
// limit becomes its own oversize chunk rather than being cut.
func splitWords(sentence string, limit int) []string {
	var parts []string
	var current strings.Builder
	for _, word := range strings.Fields(sentence) {
		if current.Len() > 0 && current.Len()+1+len(word) > limit {
			parts = append(parts, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

// pack greedily merges adjacent parts into chunks of at most limit,
// preserving order.
func pack(parts []string, limit int) []string {
	var chunks []string
	var current strings.Builder
	for _, part := range parts {
		if current.Len() > 0 && current.Len()+2+len(part) > limit {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(part)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
