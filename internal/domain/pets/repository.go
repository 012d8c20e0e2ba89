package pets

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Store es el motor de almacenamiento de la tabla de mascotas.
// Las implementaciones viven en adapters/storage (sqlite, postgres).
type Store interface {
	Query(ctx context.Context, sel Selection) (Cursor, error)
	// Insert devuelve el _id asignado por el motor.
	Insert(ctx context.Context, values Values) (int64, error)
	Update(ctx context.Context, values Values, sel Selection) (int64, error)
	Delete(ctx context.Context, sel Selection) (int64, error)
}

// Selection agrupa los parámetros de lectura/escritura que vienen del caller.
// Filter es un WHERE sin la palabra clave, con placeholders "?" para Args.
type Selection struct {
	Projection []string
	Filter     string
	Args       []any
	SortOrder  string
}

// Values es el mapping columna -> valor de un insert/update.
type Values map[string]any

// Has indica si la columna viene en el mapping (aunque sea nil).
func (v Values) Has(col string) bool {
	_, ok := v[col]
	return ok
}

// Row es una fila devuelta por Query, indexada por nombre de columna.
type Row map[string]any

// Int64 devuelve la columna como entero; 0 si falta o no es numérica.
func (r Row) Int64(col string) int64 {
	n, _ := asInt64(r[col])
	return n
}

// String devuelve la columna como texto; "" si falta o es NULL.
func (r Row) String(col string) string {
	switch s := r[col].(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case nil:
		return ""
	default:
		return fmt.Sprint(s)
	}
}

// Cursor es el resultado de un Query. NotificationURI es el identificador
// al que conviene suscribirse (Dispatcher.Watch) para saber cuándo releer.
type Cursor struct {
	Columns         []string
	Rows            []Row
	NotificationURI string
}

func (c Cursor) Len() int { return len(c.Rows) }

// asInt64 convierte lo que puede llegar en un Values a entero, como
// getAsInteger: enteros, floats sin parte decimal, json.Number y strings.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	case Gender:
		return int64(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt(f)
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	case []byte:
		return asInt64(string(n))
	default:
		return 0, false
	}
}

func floatToInt(f float64) (int64, bool) {
	if f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}
