package brain

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"evo-v1/internal/state"
)

func readFileCtx(t *testing.T) *SkillContext {
	t.Helper()
	db, err := state.Open(filepath.Join(t.TempDir(), "evo.sqlite"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &SkillContext{Notes: db, Log: zerolog.Nop()}
}

func TestReadFileSkill_Match(t *testing.T) {
	s := NewReadFileSkill()
	for _, in := range []string{"read file /tmp/a.txt", "ler ficheiro nota.md", "read file"} {
		if !s.Match(in) {
			t.Fatalf("expected match for %q", in)
		}
	}
	if s.Match("ready player one") {
		t.Fatalf("prefix match must be word-aligned")
	}
}

func TestReadFileSkill_ReadsAndStoresNote(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nota.txt")
	if err := os.WriteFile(path, []byte("line one\nline two\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	ctx := readFileCtx(t)
	s := NewReadFileSkill()

	res, err := s.Handle("read file "+path, ctx)
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !res.Handled || !strings.Contains(res.SpeakText, "Read the file") {
		t.Fatalf("unexpected result: %+v", res)
	}

	notes, err := ctx.Notes.RecentNotes(5)
	if err != nil {
		t.Fatalf("notes: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("expected 1 note, got %d", len(notes))
	}
	if !strings.HasPrefix(notes[0].Text, "[FILE] ") || !strings.Contains(notes[0].Text, "line two") {
		t.Fatalf("note missing header or content: %q", notes[0].Text)
	}
}

func TestReadFileSkill_QuotedPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nota.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	s := NewReadFileSkill()
	res, err := s.Handle("read file '"+path+"'", readFileCtx(t))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(res.SpeakText, "Read the file") {
		t.Fatalf("quoted path not accepted: %+v", res)
	}
}

func TestReadFileSkill_MissingPath(t *testing.T) {
	s := NewReadFileSkill()
	res, err := s.Handle("read file", readFileCtx(t))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !res.Handled || !strings.Contains(res.SpeakText, "Give me the path") {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestReadFileSkill_NotFound(t *testing.T) {
	s := NewReadFileSkill()
	res, err := s.Handle("read file /definitely/not/here.txt", readFileCtx(t))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(res.SpeakText, "doesn't exist") {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestReadFileSkill_RejectsExtensionAndDir(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "tool.exe")
	if err := os.WriteFile(bin, []byte{0x4d, 0x5a}, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	s := NewReadFileSkill()
	ctx := readFileCtx(t)

	res, err := s.Handle("read file "+bin, ctx)
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(res.SpeakText, "only read") {
		t.Fatalf("extension not rejected: %+v", res)
	}

	res, err = s.Handle("read file "+dir, ctx)
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(res.SpeakText, "folder") {
		t.Fatalf("directory not rejected: %+v", res)
	}
}

func TestReadFileSkill_TooBig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.txt")
	if err := os.WriteFile(path, []byte(strings.Repeat("x", readFileMaxBytes+1)), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	s := NewReadFileSkill()
	res, err := s.Handle("read file "+path, readFileCtx(t))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(res.SpeakText, "too big") {
		t.Fatalf("size cap not enforced: %+v", res)
	}
}

func TestPreview_TruncatesRuneSafe(t *testing.T) {
	long := strings.Repeat("é", 50)
	got := preview(long, 10)
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("expected ellipsis: %q", got)
	}
	for _, r := range got {
		if r == '�' {
			t.Fatalf("preview cut inside a rune: %q", got)
		}
	}
}
