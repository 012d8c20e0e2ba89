package pets

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// TargetKind clasifica un identificador de contenido.
type TargetKind int

const (
	TargetCollection TargetKind = iota + 1
	TargetItem
)

func (k TargetKind) String() string {
	switch k {
	case TargetCollection:
		return "collection"
	case TargetItem:
		return "item"
	default:
		return "unknown"
	}
}

// Target es el resultado de resolver un identificador.
// URI es la forma canónica (sin query, sin "/" final, id sin ceros a la
// izquierda). ID solo tiene sentido cuando Kind == TargetItem.
type Target struct {
	URI  string
	Kind TargetKind
	ID   int64
}

type route struct {
	segments []string
	kind     TargetKind
}

// Routes es la tabla de rutas del dispatcher. Se construye una vez y se
// pasa a NewDispatcher; no hay estado global.
type Routes struct {
	authority string
	routes    []route
}

// NewRoutes crea una tabla vacía para la authority dada.
func NewRoutes(authority string) *Routes {
	return &Routes{authority: authority}
}

// DefaultRoutes registra "pets" (colección) y "pets/#" (item).
func DefaultRoutes() *Routes {
	return NewRoutes(ContentAuthority).
		Add(PathPets, TargetCollection).
		Add(PathPets+"/#", TargetItem)
}

// Add registra un patrón de path. "#" matchea un entero no negativo.
func (r *Routes) Add(path string, kind TargetKind) *Routes {
	r.routes = append(r.routes, route{segments: splitPath(path), kind: kind})
	return r
}

// Match resuelve un identificador completo (content://authority/path).
func (r *Routes) Match(raw string) (Target, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Target{}, fmt.Errorf("%w: %q: %v", ErrUnsupportedTarget, raw, err)
	}
	if u.Scheme != ContentScheme || u.Host != r.authority {
		return Target{}, fmt.Errorf("%w: %q", ErrUnsupportedTarget, raw)
	}

	segs := splitPath(u.Path)
	for _, rt := range r.routes {
		id, ok := matchSegments(rt.segments, segs)
		if !ok {
			continue
		}
		return Target{URI: r.canonical(rt, id), Kind: rt.kind, ID: id}, nil
	}
	return Target{}, fmt.Errorf("%w: %q", ErrUnsupportedTarget, raw)
}

func (r *Routes) canonical(rt route, id int64) string {
	segs := make([]string, len(rt.segments))
	for i, p := range rt.segments {
		if p == "#" {
			p = strconv.FormatInt(id, 10)
		}
		segs[i] = p
	}
	return ContentScheme + "://" + r.authority + "/" + strings.Join(segs, "/")
}

func matchSegments(pattern, segs []string) (int64, bool) {
	if len(pattern) != len(segs) {
		return 0, false
	}
	var id int64 = -1
	for i, p := range pattern {
		if p == "#" {
			n, err := strconv.ParseUint(segs[i], 10, 63)
			if err != nil {
				return 0, false
			}
			id = int64(n)
			continue
		}
		if p != segs[i] {
			return 0, false
		}
	}
	return id, true
}

func splitPath(p string) []string {
	out := make([]string, 0, 2)
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
