package pets

import (
	"context"
	"fmt"
	"strconv"

	"pet-shelter/internal/platform/logger"
)

// InsertResult: o bien ID/URI de la mascota creada, o bien Invalid con el
// campo que no pasó la validación. Nunca ambos.
type InsertResult struct {
	ID      int64
	URI     string
	Invalid *FieldError
}

func (r InsertResult) OK() bool { return r.Invalid == nil }

// UpdateResult: Rows afectadas, o Invalid si la validación falló.
// Rows == 0 con Invalid == nil es un resultado legítimo (nada que cambiar).
type UpdateResult struct {
	Rows    int64
	Invalid *FieldError
}

func (r UpdateResult) OK() bool { return r.Invalid == nil }

// Dispatcher enruta query/insert/update/delete sobre la tabla de mascotas
// al Store, validando antes de escribir y notificando a los observers
// después de cada escritura.
type Dispatcher struct {
	store  Store
	routes *Routes
	obs    *observers
	log    logger.Logger
}

type Option func(*Dispatcher)

func WithLogger(l logger.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l
		}
	}
}

// NewDispatcher: si routes es nil se usa DefaultRoutes.
func NewDispatcher(store Store, routes *Routes, opts ...Option) *Dispatcher {
	if routes == nil {
		routes = DefaultRoutes()
	}
	d := &Dispatcher{
		store:  store,
		routes: routes,
		obs:    newObservers(),
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Watch registra fn para los cambios sobre uri (y sus ancestros/descendientes).
// Devuelve la función para desuscribirse; es idempotente.
func (d *Dispatcher) Watch(uri string, fn Listener) (cancel func()) {
	if t, err := d.routes.Match(uri); err == nil {
		uri = t.URI
	}
	return d.obs.add(uri, fn)
}

// Query lee filas. Para un item el filtro se fuerza a "_id = <id>" y se
// ignora el que mande el caller.
func (d *Dispatcher) Query(ctx context.Context, uri string, sel Selection) (Cursor, error) {
	t, err := d.routes.Match(uri)
	if err != nil {
		return Cursor{}, fmt.Errorf("cannot query: %w", err)
	}
	if err := checkSelection(sel); err != nil {
		return Cursor{}, err
	}
	if t.Kind == TargetItem {
		sel.Filter, sel.Args = byID(t.ID)
	}

	c, err := d.store.Query(ctx, sel)
	if err != nil {
		return Cursor{}, fmt.Errorf("query %s: %w", uri, err)
	}
	c.NotificationURI = t.URI

	d.log.Debug("pets query", map[string]any{"uri": uri, "rows": c.Len()})
	return c, nil
}

// Insert crea una mascota. Solo se admite sobre la colección.
func (d *Dispatcher) Insert(ctx context.Context, uri string, values Values) (InsertResult, error) {
	t, err := d.routes.Match(uri)
	if err != nil {
		return InsertResult{}, fmt.Errorf("cannot insert: %w", err)
	}
	if t.Kind != TargetCollection {
		return InsertResult{}, fmt.Errorf("insert is not supported for %q: %w", uri, ErrUnsupportedTarget)
	}

	clean, fe, err := validateInsert(values)
	if err != nil {
		return InsertResult{}, err
	}
	if fe != nil {
		d.log.Warn(fe.Message, map[string]any{"uri": uri, "field": fe.Field})
		return InsertResult{Invalid: fe}, nil
	}

	id, err := d.store.Insert(ctx, clean)
	if err != nil {
		return InsertResult{}, fmt.Errorf("insert %s: %w", uri, err)
	}
	d.obs.notify(t.URI)

	res := InsertResult{ID: id, URI: appendID(t.URI, id)}
	d.log.Info("pet inserted", map[string]any{"uri": res.URI, "id": id})
	return res, nil
}

// Update cambia solo los campos presentes en values. Un mapping vacío
// devuelve 0 filas sin tocar el Store.
func (d *Dispatcher) Update(ctx context.Context, uri string, values Values, sel Selection) (UpdateResult, error) {
	t, err := d.routes.Match(uri)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("cannot update: %w", err)
	}
	if len(values) == 0 {
		return UpdateResult{}, nil
	}

	clean, fe, err := validateUpdate(values)
	if err != nil {
		return UpdateResult{}, err
	}
	if fe != nil {
		d.log.Warn(fe.Message, map[string]any{"uri": uri, "field": fe.Field})
		return UpdateResult{Invalid: fe}, nil
	}

	where := Selection{Filter: sel.Filter, Args: sel.Args}
	if t.Kind == TargetItem {
		where.Filter, where.Args = byID(t.ID)
	}

	n, err := d.store.Update(ctx, clean, where)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("update %s: %w", uri, err)
	}
	d.obs.notify(t.URI)

	d.log.Info("pets updated", map[string]any{"uri": uri, "rows": n})
	return UpdateResult{Rows: n}, nil
}

// Delete borra por filtro (colección; sin filtro borra todo) o por id (item).
// 0 filas borradas no es un error.
func (d *Dispatcher) Delete(ctx context.Context, uri string, sel Selection) (int64, error) {
	t, err := d.routes.Match(uri)
	if err != nil {
		return 0, fmt.Errorf("cannot delete: %w", err)
	}

	where := Selection{Filter: sel.Filter, Args: sel.Args}
	if t.Kind == TargetItem {
		where.Filter, where.Args = byID(t.ID)
	}

	n, err := d.store.Delete(ctx, where)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", uri, err)
	}
	d.obs.notify(t.URI)

	d.log.Info("pets deleted", map[string]any{"uri": uri, "rows": n})
	return n, nil
}

// Type devuelve el tag MIME-like del identificador.
func (d *Dispatcher) Type(uri string) (string, error) {
	t, err := d.routes.Match(uri)
	if err != nil {
		return "", err
	}
	switch t.Kind {
	case TargetCollection:
		return ContentListType, nil
	case TargetItem:
		return ContentItemType, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedTarget, uri)
	}
}

func byID(id int64) (string, []any) {
	return ColumnID + " = ?", []any{id}
}

func appendID(uri string, id int64) string {
	return uri + "/" + strconv.FormatInt(id, 10)
}
