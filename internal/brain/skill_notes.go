package brain

import (
	"fmt"
	"regexp"
	"strings"

	"evo-v1/internal/state"
)

// NotesQuerySkill answers questions about what was stored in the note log:
// a summary of the last note, a literal search, or a topic lookup. Retrieval
// is deliberately traditional: substring and token matching, heuristic
// summaries, no model involved.
type NotesQuerySkill struct {
	summaryPhrases map[string]struct{}
	searchPrefixes []string
}

var notesAboutRe = regexp.MustCompile(`^(?:what do the notes say about|o que diz sobre)\s+(.+)$`)

func NewNotesQuerySkill() *NotesQuerySkill {
	return &NotesQuerySkill{
		summaryPhrases: phraseSet(
			"summarize last",
			"summarise last",
			"resumo do ultimo",
			"resume o ultimo",
			"resumir o ultimo",
		),
		searchPrefixes: []string{"search", "procura", "pesquisa"},
	}
}

func (s *NotesQuerySkill) Name() string { return "notes_query" }

func (s *NotesQuerySkill) Match(text string) bool {
	t := Normalize(text)
	if _, ok := s.summaryPhrases[t]; ok {
		return true
	}
	for _, p := range s.searchPrefixes {
		if strings.HasPrefix(t, p+" ") {
			return true
		}
	}
	return notesAboutRe.MatchString(t)
}

func (s *NotesQuerySkill) Handle(text string, ctx *SkillContext) (SkillResult, error) {
	t := Normalize(text)

	if ctx.Notes == nil {
		return speak("The note log isn't available right now.", "Notes: unavailable"), nil
	}
	notes, err := ctx.Notes.RecentNotes(50)
	if err != nil {
		return SkillResult{}, fmt.Errorf("load notes: %w", err)
	}
	if len(notes) == 0 {
		return speak("I don't have any notes yet. First use: 'read file <path>'.",
			"Notes: empty"), nil
	}

	// 1) Summary of the most recent note.
	if _, ok := s.summaryPhrases[t]; ok {
		last := notes[len(notes)-1].Text
		return speak("Summary of the last one: "+summarize(last),
			"Summary of the last note"), nil
	}

	// 2) Literal search.
	if term := s.extractSearchTerm(t); term != "" {
		hits := searchNotes(notes, term, 3)
		if len(hits) == 0 {
			return speak(fmt.Sprintf("I didn't find '%s' in the recent notes.", term),
				"Search without results: "+term), nil
		}
		parts := []string{fmt.Sprintf("Found '%s' in %d note(s).", term, len(hits))}
		for i, h := range hits {
			parts = append(parts, fmt.Sprintf("Result %d: %s", i+1, preview(h, 360)))
		}
		return speak(strings.Join(parts, " "),
			fmt.Sprintf("Search: %s (%d result(s))", term, len(hits))), nil
	}

	// 3) Topic lookup: a note matches when it contains every topic token.
	if m := notesAboutRe.FindStringSubmatch(t); m != nil {
		topic := strings.TrimSpace(m[1])
		hits := topicNotes(notes, topic, 4)
		if len(hits) == 0 {
			return speak(fmt.Sprintf("I found nothing about '%s' in the recent notes.", topic),
				"No results: "+topic), nil
		}
		combined := strings.Join(hits, "\n")
		return speak(fmt.Sprintf("About '%s': %s", topic, summarize(combined)),
			"Topic: "+topic), nil
	}

	return speak("Command recognized but I couldn't process it. Try: 'summarize last' or 'search X'.",
		"Notes: error"), nil
}

func (s *NotesQuerySkill) extractSearchTerm(t string) string {
	for _, p := range s.searchPrefixes {
		if strings.HasPrefix(t, p+" ") {
			return strings.TrimSpace(t[len(p):])
		}
	}
	return ""
}

// searchNotes scans newest-first and returns excerpts around the term.
func searchNotes(notes []state.Note, term string, maxHits int) []string {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}
	termLow := strings.ToLower(term)

	var out []string
	for i := len(notes) - 1; i >= 0 && len(out) < maxHits; i-- {
		text := notes[i].Text
		if strings.Contains(strings.ToLower(text), termLow) {
			out = append(out, excerptAround(text, term, 220))
		}
	}
	return out
}

// topicNotes keeps notes containing every token of the topic.
func topicNotes(notes []state.Note, topic string, maxHits int) []string {
	tokens := tokenize(topic)
	if len(tokens) == 0 {
		return nil
	}

	var out []string
	for i := len(notes) - 1; i >= 0 && len(out) < maxHits; i-- {
		low := strings.ToLower(notes[i].Text)
		all := true
		for _, tok := range tokens {
			if !strings.Contains(low, tok) {
				all = false
				break
			}
		}
		if all {
			out = append(out, excerptAround(notes[i].Text, tokens[0], 220))
		}
	}
	return out
}

func excerptAround(text, term string, radius int) string {
	if text == "" {
		return ""
	}
	idx := strings.Index(strings.ToLower(text), strings.ToLower(term))
	if idx < 0 {
		return preview(text, radius)
	}

	start := idx - radius
	if start < 0 {
		start = 0
	}
	end := idx + len(term) + radius
	if end > len(text) {
		end = len(text)
	}

	chunk := strings.ReplaceAll(text[start:end], "\r", " ")
	chunk = strings.Join(strings.Fields(chunk), " ")
	if start > 0 {
		chunk = "…" + chunk
	}
	if end < len(text) {
		chunk = chunk + "…"
	}
	return chunk
}

var sentenceSplitRe = regexp.MustCompile(`(?:[.!?])\s+`)

// summarize keeps the first two or three sentences, capped for TTS.
func summarize(text string) string {
	if text == "" {
		return "empty."
	}

	var lines []string
	for _, ln := range strings.Split(text, "\n") {
		if strings.TrimSpace(ln) == "" {
			continue
		}
		lines = append(lines, ln)
	}
	// drop the [FILE] header if present
	if len(lines) > 0 && strings.HasPrefix(lines[0], "[FILE]") {
		lines = lines[1:]
	}

	clean := strings.Join(strings.Fields(strings.Join(lines, " ")), " ")
	if clean == "" {
		return "empty."
	}

	sentences := splitSentences(clean)
	if len(sentences) == 0 {
		return preview(clean, 420)
	}

	out := strings.Join(sentences[:min(2, len(sentences))], " ")
	if len(out) < 220 && len(sentences) >= 3 {
		out = out + " " + sentences[2]
	}
	return preview(out, 520)
}

func splitSentences(s string) []string {
	var out []string
	for _, part := range sentenceSplitRe.Split(s, -1) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
