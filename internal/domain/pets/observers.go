package pets

import (
	"strings"
	"sync"
)

// Listener recibe el identificador que cambió.
type Listener func(uri string)

type watch struct {
	uri string
	fn  Listener
}

// observers guarda las suscripciones de Dispatcher.Watch.
type observers struct {
	mu     sync.Mutex
	nextID uint64
	byID   map[uint64]watch
}

func newObservers() *observers {
	return &observers{byID: make(map[uint64]watch)}
}

func (o *observers) add(uri string, fn Listener) func() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.nextID++
	id := o.nextID
	o.byID[id] = watch{uri: strings.TrimRight(uri, "/"), fn: fn}

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			delete(o.byID, id)
		})
	}
}

// notify llama (fuera del lock) a todos los listeners cuyo URI es el
// cambiado, un ancestro o un descendiente.
func (o *observers) notify(uri string) {
	changed := strings.TrimRight(uri, "/")

	o.mu.Lock()
	fns := make([]Listener, 0, len(o.byID))
	for _, w := range o.byID {
		if related(w.uri, changed) {
			fns = append(fns, w.fn)
		}
	}
	o.mu.Unlock()

	for _, fn := range fns {
		fn(uri)
	}
}

func (o *observers) len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.byID)
}

func related(a, b string) bool {
	return a == b || strings.HasPrefix(b, a+"/") || strings.HasPrefix(a, b+"/")
}
