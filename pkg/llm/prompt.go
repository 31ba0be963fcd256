package llm

import "strings"

const systemPrompt = "You are a precise news summarizer. " +
	"Preserve facts, names, numbers, tickers, and dates. Avoid speculation. " +
	"No headings, no emojis."

func modeHint(mode string) string {
	if mode == ModeParagraph {
		return "Write one compact paragraph (~80–120 words)."
	}
	return "Write 3–5 concise bullet points."
}

func langHint(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" || strings.EqualFold(lang, LangAuto) {
		return "Detect the input language and write in that language."
	}
	return "Write in " + lang + "."
}

// buildUserPrompt lays out the optional context lines followed by the article.
func buildUserPrompt(text string, hints StyleHints) string {
	lines := make([]string, 0, 8)
	if t := strings.TrimSpace(hints.Title); t != "" {
		lines = append(lines, "Title: "+t)
	}
	if t := strings.TrimSpace(hints.Topic); t != "" {
		lines = append(lines, "Topic: "+t+".")
	}
	lines = append(lines,
		"Style: "+modeHint(NormalizeMode(hints.Mode)),
		langHint(hints.Lang),
		"",
		"=== ARTICLE START ===",
		text,
		"=== ARTICLE END ===",
	)
	return strings.Join(lines, "\n")
}
