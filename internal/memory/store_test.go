package memory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStore_SetGetDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	s, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, s.SetFact("coffee", "hot drink"))

	f, ok := s.GetFact("coffee")
	require.True(t, ok)
	require.Equal(t, "hot drink", f.Value)
	require.NotEmpty(t, f.UpdatedAt)

	deleted, err := s.DeleteFact("coffee")
	require.NoError(t, err)
	require.True(t, deleted)

	_, ok = s.GetFact("coffee")
	require.False(t, ok)

	deleted, err = s.DeleteFact("coffee")
	require.NoError(t, err)
	require.False(t, deleted, "second delete must report absence")
}

func TestStore_KeysAreNormalized(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "memory.json"))
	require.NoError(t, err)

	require.NoError(t, s.SetFact("  Coffee ", "hot drink"))

	f, ok := s.GetFact("coffee")
	require.True(t, ok)
	require.Equal(t, "hot drink", f.Value)

	require.Equal(t, []string{"coffee"}, s.ListFactKeys())
}

func TestStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SetFact("wifi", "hunter2"))

	s2, err := Open(path)
	require.NoError(t, err)
	f, ok := s2.GetFact("wifi")
	require.True(t, ok)
	require.Equal(t, "hunter2", f.Value)
}

func TestStore_CorruptFileIsQuarantined(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "memory.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s, err := Open(path)
	require.NoError(t, err)
	require.Empty(t, s.ListFactKeys())

	_, err = os.Stat(path + ".corrupted")
	require.NoError(t, err, "corrupt file should be renamed aside")

	// The rebuilt store works.
	require.NoError(t, s.SetFact("coffee", "hot drink"))
	_, ok := s.GetFact("coffee")
	require.True(t, ok)
}

func TestStore_EmptyKeyIsIgnored(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "memory.json"))
	require.NoError(t, err)

	require.NoError(t, s.SetFact("   ", "value"))
	require.Empty(t, s.ListFactKeys())

	_, ok := s.GetFact("")
	require.False(t, ok)
}

func TestStore_BootstrapCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "memory.json")
	_, err := Open(path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err)
}
