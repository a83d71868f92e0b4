package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chazu/envi/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms scene-description source before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: run-period -> run_period
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds a parsed mixed positional+keyword argument list. Reads
// record the first conversion failure; done reports it together with any
// keyword that was never read.
type kwArgs struct {
	form       string
	kw         map[string]zygo.Sexp
	used       map[string]bool
	positional []zygo.Sexp
	err        error
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(form string, args []zygo.Sexp) *kwArgs {
	a := &kwArgs{form: form, kw: make(map[string]zygo.Sexp), used: make(map[string]bool)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			a.positional = append(a.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			a.kw[name] = args[i+1]
			i++
		} else {
			// Keyword at end with no value: treat as flag with nil.
			a.kw[name] = zygo.SexpNull
		}
	}
	return a
}

func (a *kwArgs) fail(key string, err error) {
	if a.err == nil {
		a.err = fmt.Errorf("%s: %s: %w", a.form, key, err)
	}
}

// take returns the value of key and marks it read.
func (a *kwArgs) take(key string) (zygo.Sexp, bool) {
	v, ok := a.kw[key]
	if ok {
		a.used[key] = true
	}
	return v, ok
}

func (a *kwArgs) float(key string, dst *float64) {
	if v, ok := a.take(key); ok {
		f, err := toFloat64(v)
		if err != nil {
			a.fail(key, err)
			return
		}
		*dst = f
	}
}

func (a *kwArgs) int(key string, dst *int) {
	if v, ok := a.take(key); ok {
		f, err := toFloat64(v)
		if err != nil {
			a.fail(key, err)
			return
		}
		*dst = int(f)
	}
}

func (a *kwArgs) str(key string, dst *string) {
	if v, ok := a.take(key); ok {
		s, err := toKeywordString(v)
		if err != nil {
			a.fail(key, err)
			return
		}
		*dst = s
	}
}

func (a *kwArgs) bool(key string, dst *bool) {
	if v, ok := a.take(key); ok {
		b, err := toBool(v)
		if err != nil {
			a.fail(key, err)
			return
		}
		*dst = b
	}
}

func (a *kwArgs) floats(key string, dst *[]float64) {
	if v, ok := a.take(key); ok {
		items, err := sexpListToSlice(v)
		if err != nil {
			a.fail(key, err)
			return
		}
		out := make([]float64, 0, len(items))
		for _, item := range items {
			f, err := toFloat64(item)
			if err != nil {
				a.fail(key, err)
				return
			}
			out = append(out, f)
		}
		*dst = out
	}
}

func (a *kwArgs) vec(key string, dst *v3.Vec) {
	if v, ok := a.take(key); ok {
		vec, err := toVec3(v)
		if err != nil {
			a.fail(key, err)
			return
		}
		*dst = vec
	}
}

// kwEnum reads a keyword naming one of the entries of table.
func kwEnum[T any](a *kwArgs, key string, table map[string]T, dst *T) {
	v, ok := a.take(key)
	if !ok {
		return
	}
	name, err := toKeywordString(v)
	if err != nil {
		a.fail(key, err)
		return
	}
	val, ok := table[name]
	if !ok {
		names := make([]string, 0, len(table))
		for n := range table {
			names = append(names, ":"+n)
		}
		sort.Strings(names)
		a.fail(key, fmt.Errorf("invalid value %q, expected one of %s", name, strings.Join(names, " ")))
		return
	}
	*dst = val
}

// name returns positional argument i as a string.
func (a *kwArgs) name(i int) string {
	if i >= len(a.positional) {
		a.fail("name", fmt.Errorf("missing argument %d", i+1))
		return ""
	}
	s, err := toString(a.positional[i])
	if err != nil {
		a.fail("name", err)
		return ""
	}
	return s
}

// done returns the first read failure, or an error naming an unknown
// keyword.
func (a *kwArgs) done() error {
	if a.err != nil {
		return a.err
	}
	var unknown []string
	for k := range a.kw {
		if !a.used[k] {
			unknown = append(unknown, ":"+k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%s: unknown keyword %s", a.form, strings.Join(unknown, " "))
	}
	return nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a boolean. A bare trailing keyword counts as true.
func toBool(s zygo.Sexp) (bool, error) {
	switch v := s.(type) {
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return true, nil
		}
	}
	return false, fmt.Errorf("expected true or false, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_wall) and plain strings ("wall").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// toVec3 extracts a vector from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// flatten expands nested lists so forms accept both (f a b) and
// (f (list a b)).
func flatten(args []zygo.Sexp) []zygo.Sexp {
	var out []zygo.Sexp
	for _, a := range args {
		switch a.(type) {
		case *zygo.SexpPair, *zygo.SexpArray:
			items, _ := sexpListToSlice(a)
			out = append(out, flatten(items)...)
		default:
			out = append(out, a)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a vector.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpNodeRef names a network node so connect can take the value a node
// form returned.
type sexpNodeRef struct {
	name string
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(noderef %q)", n.name)
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// builder is the scene a script is populating.
type builder struct {
	sc *scene.Scene
}

func newBuilder(sc *scene.Scene) *builder {
	return &builder{sc: sc}
}

// finish checks cross references that can only be resolved once the whole
// script has run.
func (b *builder) finish() error {
	var missing []string
	seen := make(map[string]bool)
	for _, c := range b.sc.Collections {
		for _, o := range c.Objects {
			for _, m := range o.Slots {
				if m != "" && b.sc.Material(m) == nil && !seen[m] {
					seen[m] = true
					missing = append(missing, fmt.Sprintf("%s (object %s)", m, o.Name))
				}
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("engine: unknown material %s", strings.Join(missing, ", "))
	}
	return nil
}

type builtin func(b *builder, args []zygo.Sexp) (zygo.Sexp, error)

// registerBuiltins installs the scene-description forms into a zygomys
// environment. The forms populate b's scene during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
// Kebab-case form names are registered in their underscore spelling.
func registerBuiltins(env *zygo.Zlisp, b *builder) {
	groups := []map[string]builtin{paramForms, constructionForms, geometryForms, networkForms}
	for _, forms := range groups {
		for name, fn := range forms {
			fn := fn
			env.AddFunction(strings.ReplaceAll(name, "-", "_"), func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
				return fn(b, args)
			})
		}
	}
}
