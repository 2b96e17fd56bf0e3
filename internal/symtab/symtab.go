// Package symtab implements SymbolTable's identifier-assignment pass (§4.2):
// it maps each hir.Symbol to a unique, GLSL-legal, deterministic identifier.
package symtab

import (
	"hash/fnv"
	"regexp"
	"strings"

	"github.com/gogpu/shaderpart/internal/hir"
)

var identSanitizer = regexp.MustCompile(`[^A-Za-z0-9_]`)

// base64Alphabet is the 64-symbol alphabet used to encode collision
// suffixes, per §4.2. Positions 0-61 are single ASCII identifier
// characters; positions 62 and 63 are two-character digraphs, so that the
// alphabet stays GLSL-identifier-safe (no leading digit, no punctuation)
// while still packing 6 bits per symbol.
var base64Alphabet = []string{
	"a", "b", "c", "d", "e", "f", "g", "h", "i", "j",
	"k", "l", "m", "n", "o", "p", "q", "r", "s", "t",
	"u", "v", "w", "x", "y", "z",
	"A", "B", "C", "D", "E", "F", "G", "H", "I", "J",
	"K", "L", "M", "N", "O", "P", "Q", "R", "S", "T",
	"U", "V", "W", "X", "Y", "Z",
	"0", "1", "2", "3", "4", "5", "6", "7", "8", "9",
	"Qx", "Zz",
}

// Namespace assigns unique names within one output scope — one Namespace
// per emitted shader stage, since the same host Symbol may legally collide
// in name with an unrelated Symbol visible only in a different stage.
type Namespace struct {
	used  map[string]struct{}
	names map[hir.SymbolID]string
}

// NewNamespace creates an empty per-stage naming scope.
func NewNamespace() *Namespace {
	return &Namespace{
		used:  make(map[string]struct{}),
		names: make(map[hir.SymbolID]string),
	}
}

// Assign returns sym's GLSL identifier within this namespace, computing and
// caching it on first use. Per §4.2: strip non-identifier characters to
// form base; if base (escaped against GLSL keywords and never empty or
// digit-leading) is unique in this namespace, use it unmodified; otherwise
// append an underscore and a base-64 suffix derived from the symbol's
// stable identity hash, so that the assigned name is a pure function of
// the symbol's (ID, Name) pair and the current namespace's history, not of
// map iteration order.
func (ns *Namespace) Assign(id hir.SymbolID, name string) string {
	if existing, ok := ns.names[id]; ok {
		return existing
	}

	base := sanitize(name)
	if _, taken := ns.used[base]; !taken {
		ns.used[base] = struct{}{}
		ns.names[id] = base
		return base
	}

	h := identityHash(id, name)
	for attempt := uint64(0); ; attempt++ {
		candidate := base + "_" + encodeSuffix(h+attempt)
		if _, taken := ns.used[candidate]; !taken {
			ns.used[candidate] = struct{}{}
			ns.names[id] = candidate
			return candidate
		}
	}
}

// Bind fixes id's name to exactly name, bypassing sanitize/collision
// derivation. Used to seed a stage's namespace with a varying's name
// already chosen by VaryingPlanner, so the same symbol is spelled
// identically as both the producing stage's "out" and the consuming
// stage's "in" declaration (§3 invariant).
func (ns *Namespace) Bind(id hir.SymbolID, name string) {
	ns.used[name] = struct{}{}
	ns.names[id] = name
}

// Lookup returns the previously assigned name for id, if any.
func (ns *Namespace) Lookup(id hir.SymbolID) (string, bool) {
	n, ok := ns.names[id]
	return n, ok
}

// sanitize strips characters illegal in a GLSL identifier and guards
// against an empty or digit-leading result.
func sanitize(name string) string {
	escaped := glslEscape(name)
	s := identSanitizer.ReplaceAllString(escaped, "")
	if s == "" {
		s = "v"
	}
	if s[0] >= '0' && s[0] <= '9' {
		s = "_" + s
	}
	if _, reserved := keywords[s]; reserved {
		s = s + "_"
	}
	return s
}

// glslEscape is a hook for renaming host-only spellings (e.g. "gl_" prefix
// collisions) before sanitize's character filter runs. Host identifiers
// never legitimately start with "gl_" — GLSL reserves that prefix for
// built-ins — so such a name is relabeled rather than rejected.
func glslEscape(name string) string {
	if strings.HasPrefix(name, "gl_") {
		return "_" + name
	}
	return name
}

// identityHash computes a stable 64-bit hash of a symbol's identity,
// independent of allocation order, so that re-running the compiler on
// identical input always assigns identical collision suffixes (§5
// determinism requirement).
func identityHash(id hir.SymbolID, name string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	h.Write([]byte{
		byte(id), byte(id >> 8), byte(id >> 16), byte(id >> 24),
	})
	return h.Sum64()
}

// encodeSuffix packs v 6 bits at a time into the base-64 alphabet, most
// significant group first, using at least one symbol.
func encodeSuffix(v uint64) string {
	if v == 0 {
		return base64Alphabet[0]
	}
	var groups []string
	for v > 0 {
		groups = append(groups, base64Alphabet[v&0x3f])
		v >>= 6
	}
	var sb strings.Builder
	for i := len(groups) - 1; i >= 0; i-- {
		sb.WriteString(groups[i])
	}
	return sb.String()
}
