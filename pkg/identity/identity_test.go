package identity

import (
	"os"
	"path/filepath"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignIsStable(t *testing.T) {
	r := New()
	a := r.Assign("EN_A", "k1")
	b := r.Assign("EN_A", "k2")
	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
	assert.Equal(t, a, r.Assign("EN_A", "k1"))

	// Scopes number independently.
	assert.Equal(t, 1, r.Assign("EN_B", "k1"))
	assert.Equal(t, 2, r.Len("EN_A"))
}

func TestNewKeyGetsMaxPlusOne(t *testing.T) {
	r := New()
	for _, k := range []string{"a", "b", "c"} {
		r.Assign("z", k)
	}
	assert.Equal(t, 4, r.Assign("z", "d"))
	id, ok := r.Lookup("z", "b")
	assert.True(t, ok)
	assert.Equal(t, 2, id)
	_, ok = r.Lookup("z", "missing")
	assert.False(t, ok)
}

func TestSessionDisambiguatesDuplicates(t *testing.T) {
	r := New()
	s := r.Session("z")
	first := s.Assign("dup")
	second := s.Assign("dup")
	assert.NotEqual(t, first, second)

	// A second pass sees the same occurrences in the same order.
	s2 := r.Session("z")
	assert.Equal(t, first, s2.Assign("dup"))
	assert.Equal(t, second, s2.Assign("dup"))
}

func TestFaceKeyRounding(t *testing.T) {
	n := v3.Vec{Z: 1}
	k1 := FaceKey("wall", "brick", v3.Vec{X: 1.00004, Y: -0.0001}, n)
	k2 := FaceKey("wall", "brick", v3.Vec{X: 1.0, Y: 0}, n)
	assert.Equal(t, k1, k2, "rounding and negative zero should not change the key")
	assert.NotEqual(t, k1, FaceKey("wall", "glass", v3.Vec{X: 1}, n))
	assert.NotEqual(t, k1, FaceKey("wall", "brick", v3.Vec{X: 1}, v3.Vec{Z: -1}))
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "identity.json")

	r := New()
	r.Assign("EN_A", "k1")
	r.Assign("EN_A", "k2")
	require.NoError(t, r.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Assign("EN_A", "k2"))
	assert.Equal(t, 3, loaded.Assign("EN_A", "k3"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file should be renamed away")
}

func TestLoadMissingAndCorrupt(t *testing.T) {
	dir := t.TempDir()
	r, err := Load(filepath.Join(dir, "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, 0, r.Len("any"))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)
}
