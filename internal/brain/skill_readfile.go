package brain

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// ReadFileSkill reads a local text file and appends its content to the note
// log. Only safe extensions, capped in size so a huge file never stalls the
// decide loop.
type ReadFileSkill struct {
	verbs []string
}

var readFileAllowedExt = map[string]struct{}{
	".txt": {}, ".md": {}, ".json": {}, ".log": {}, ".csv": {},
}

const readFileMaxBytes = 200_000

func NewReadFileSkill() *ReadFileSkill {
	return &ReadFileSkill{
		verbs: []string{
			"read file",
			"ler ficheiro",
			"le ficheiro",
			"open file",
			"abre",
			"abrir",
		},
	}
}

func (s *ReadFileSkill) Name() string { return "read_file" }

func (s *ReadFileSkill) Match(text string) bool {
	t := Normalize(text)
	for _, v := range s.verbs {
		if strings.HasPrefix(t, v+" ") || t == v {
			return true
		}
	}
	return false
}

func (s *ReadFileSkill) Handle(text string, ctx *SkillContext) (SkillResult, error) {
	path := s.extractPath(strings.TrimSpace(text))
	if path == "" {
		return speak("Give me the path. Example: 'read file /home/ivo/note.txt'.",
			"Read: missing path"), nil
	}

	path = os.ExpandEnv(path)
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return speak("That file doesn't exist.", "Read: not found"), nil
	}
	if err != nil {
		return SkillResult{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return speak("That's a folder. For now I only read files.", "Read: is a folder"), nil
	}

	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := readFileAllowedExt[ext]; !ok {
		return speak(fmt.Sprintf("For now I only read: %s.", allowedExtList()),
			fmt.Sprintf("Read: unsupported extension (%s)", ext)), nil
	}

	if info.Size() > readFileMaxBytes {
		return speak("The file is too big to read in one go. Split it or tell me the excerpt.",
			fmt.Sprintf("Read: too big (%d bytes)", info.Size())), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return SkillResult{}, fmt.Errorf("read %s: %w", path, err)
	}
	content := string(b)

	// Kept auditable: header plus raw content.
	if ctx.Notes != nil {
		note := "[FILE] " + path + "\n" + content
		if err := ctx.Notes.AddNote(note); err != nil {
			ctx.Log.Error().Err(err).Str("path", path).Msg("store note")
		}
	}

	lines := strings.Count(content, "\n")
	if content != "" {
		lines++
	}
	return SkillResult{
		Handled: true,
		SpeakText: fmt.Sprintf("Read the file. %d lines, %d characters. Stored in memory. Preview: %s",
			lines, len(content), preview(content, 420)),
		HudText: "Read and stored: " + filepath.Base(path),
	}, nil
}

var quotedPathRe = regexp.MustCompile(`^['"](.+)['"]$`)

// extractPath returns whatever follows the verb, with optional quotes
// stripped. The path keeps its original casing.
func (s *ReadFileSkill) extractPath(raw string) string {
	lowered := strings.ToLower(raw)
	rest := ""
	for _, v := range s.verbs {
		if strings.HasPrefix(lowered, v) {
			rest = strings.TrimSpace(raw[len(v):])
			break
		}
	}
	if rest == "" {
		return ""
	}
	if m := quotedPathRe.FindStringSubmatch(rest); m != nil {
		return strings.TrimSpace(m[1])
	}
	return rest
}

func allowedExtList() string {
	exts := make([]string, 0, len(readFileAllowedExt))
	for e := range readFileAllowedExt {
		exts = append(exts, e)
	}
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}

func speak(speakText, hudText string) SkillResult {
	return SkillResult{Handled: true, SpeakText: speakText, HudText: hudText}
}

func preview(text string, n int) string {
	t := strings.ReplaceAll(strings.TrimSpace(text), "\r", " ")
	t = strings.Join(strings.Fields(t), " ")
	if t == "" {
		return "empty."
	}
	r := []rune(t)
	if len(r) <= n {
		return t
	}
	return strings.TrimRight(string(r[:n]), " ") + "…"
}
