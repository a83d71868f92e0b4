// Package identity keeps face identifiers stable across re-export. Faces
// carry no IDs of their own; instead a registry maps a geometric key
// (owning object, material, rounded centroid and normal) to the integer ID
// first assigned to it. The registry is persisted as JSON between runs.
package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Registry maps (scope, key) pairs to IDs. A scope is normally a zone
// name; IDs are unique and monotonically allocated within a scope.
type Registry struct {
	IDs  map[string]map[string]int `json:"ids"`
	Next map[string]int            `json:"next"`
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		IDs:  make(map[string]map[string]int),
		Next: make(map[string]int),
	}
}

// Load reads a registry from path. A missing file yields an empty
// registry.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("identity: read %s: %w", path, err)
	}
	r := New()
	if err := json.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("identity: parse %s: %w", path, err)
	}
	if r.IDs == nil {
		r.IDs = make(map[string]map[string]int)
	}
	if r.Next == nil {
		r.Next = make(map[string]int)
	}
	return r, nil
}

// Save writes the registry to path via a temporary file and rename.
func (r *Registry) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("identity: encode: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".identity-*.json")
	if err != nil {
		return fmt.Errorf("identity: save %s: %w", path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("identity: save %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("identity: save %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("identity: save %s: %w", path, err)
	}
	return nil
}

// Lookup returns the ID recorded for key in scope.
func (r *Registry) Lookup(scope, key string) (int, bool) {
	id, ok := r.IDs[scope][key]
	return id, ok
}

// Assign returns the ID recorded for key in scope, allocating the next
// unused ID when the key is new.
func (r *Registry) Assign(scope, key string) int {
	ids := r.IDs[scope]
	if ids == nil {
		ids = make(map[string]int)
		r.IDs[scope] = ids
	}
	if id, ok := ids[key]; ok {
		return id
	}
	r.Next[scope]++
	id := r.Next[scope]
	ids[key] = id
	return id
}

// Len returns the number of keys recorded in scope.
func (r *Registry) Len(scope string) int {
	return len(r.IDs[scope])
}

// Session assigns IDs for one pass over a scope. Keys repeated within the
// pass (coincident duplicate faces) are disambiguated by occurrence so each
// occurrence keeps its own ID across passes.
type Session struct {
	r     *Registry
	scope string
	seen  map[string]int
}

// Session starts an assignment pass over scope.
func (r *Registry) Session(scope string) *Session {
	return &Session{r: r, scope: scope, seen: make(map[string]int)}
}

// Assign returns the ID for the next occurrence of key in this pass.
func (s *Session) Assign(key string) int {
	n := s.seen[key]
	s.seen[key]++
	if n > 0 {
		key = fmt.Sprintf("%s#%d", key, n)
	}
	return s.r.Assign(s.scope, key)
}

// FaceKey builds the registry key of a face from its owning object, its
// material and its object-space centroid and normal rounded to 3 decimals.
// Object-space coordinates keep the key stable when the object moves
// between frames.
func FaceKey(object, material string, centroid, normal v3.Vec) string {
	return fmt.Sprintf("%s|%s|%.3f,%.3f,%.3f|%.3f,%.3f,%.3f", object, material,
		round3(centroid.X), round3(centroid.Y), round3(centroid.Z),
		round3(normal.X), round3(normal.Y), round3(normal.Z))
}

func round3(x float64) float64 {
	r := math.Round(x*1000) / 1000
	if r == 0 {
		return 0 // drop negative zero
	}
	return r
}
