package pets

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedTarget: el identificador no corresponde a ninguna ruta
	// conocida, o la operación no aplica a esa ruta (ej: insert sobre un item).
	ErrUnsupportedTarget = errors.New("unsupported target")

	// ErrUnknownColumn: Values, proyección u orden referencian una columna
	// que no existe en la tabla.
	ErrUnknownColumn = errors.New("unknown column")
)

// FieldError es un error de validación de un campo. No se propaga como
// error: viaja dentro de InsertResult/UpdateResult para que el caller
// decida qué mostrar.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return "InvalidField:" + e.Field }

// Mensajes para el usuario (los mismos que se mostraban como toast).
const (
	MsgNameRequired  = "Pet requires a name"
	MsgInvalidWeight = "Pet requires valid weight"
	MsgInvalidGender = "Pet requires valid gender"
	MsgInvalidBreed  = "Pet breed must be text"
	MsgImmutableID   = "Pet id cannot be changed"
)

// validateInsert valida en orden name, weight, gender (todos obligatorios)
// y devuelve los valores normalizados listos para el Store.
func validateInsert(in Values) (Values, *FieldError, error) {
	if err := checkColumns(in); err != nil {
		return nil, nil, err
	}
	out := make(Values, len(in))

	name, fe := normName(in[ColumnName])
	if fe != nil {
		return nil, fe, nil
	}
	out[ColumnName] = name

	if !in.Has(ColumnWeight) {
		return nil, &FieldError{Field: ColumnWeight, Message: MsgInvalidWeight}, nil
	}
	w, fe := normWeight(in[ColumnWeight])
	if fe != nil {
		return nil, fe, nil
	}
	out[ColumnWeight] = w

	if !in.Has(ColumnGender) {
		return nil, &FieldError{Field: ColumnGender, Message: MsgInvalidGender}, nil
	}
	g, fe := normGender(in[ColumnGender])
	if fe != nil {
		return nil, fe, nil
	}
	out[ColumnGender] = g

	if in.Has(ColumnBreed) {
		b, fe := normBreed(in[ColumnBreed])
		if fe != nil {
			return nil, fe, nil
		}
		out[ColumnBreed] = b
	}

	// _id lo asigna el motor.
	if in.Has(ColumnID) {
		return nil, &FieldError{Field: ColumnID, Message: MsgImmutableID}, nil
	}
	return out, nil, nil
}

// validateUpdate valida solo los campos presentes, con las mismas reglas
// que validateInsert.
func validateUpdate(in Values) (Values, *FieldError, error) {
	if err := checkColumns(in); err != nil {
		return nil, nil, err
	}
	out := make(Values, len(in))

	if in.Has(ColumnName) {
		name, fe := normName(in[ColumnName])
		if fe != nil {
			return nil, fe, nil
		}
		out[ColumnName] = name
	}
	if in.Has(ColumnWeight) {
		w, fe := normWeight(in[ColumnWeight])
		if fe != nil {
			return nil, fe, nil
		}
		out[ColumnWeight] = w
	}
	if in.Has(ColumnGender) {
		g, fe := normGender(in[ColumnGender])
		if fe != nil {
			return nil, fe, nil
		}
		out[ColumnGender] = g
	}
	if in.Has(ColumnBreed) {
		b, fe := normBreed(in[ColumnBreed])
		if fe != nil {
			return nil, fe, nil
		}
		out[ColumnBreed] = b
	}
	if in.Has(ColumnID) {
		return nil, &FieldError{Field: ColumnID, Message: MsgImmutableID}, nil
	}
	return out, nil, nil
}

func checkColumns(in Values) error {
	for k := range in {
		if !IsColumn(k) {
			return fmt.Errorf("%w: %q", ErrUnknownColumn, k)
		}
	}
	return nil
}

func normName(v any) (string, *FieldError) {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", &FieldError{Field: ColumnName, Message: MsgNameRequired}
	}
	return strings.TrimSpace(s), nil
}

func normWeight(v any) (int64, *FieldError) {
	w, ok := asInt64(v)
	if !ok || w < 0 {
		return 0, &FieldError{Field: ColumnWeight, Message: MsgInvalidWeight}
	}
	return w, nil
}

func normGender(v any) (int64, *FieldError) {
	g, ok := asInt64(v)
	if !ok || !IsValidGender(g) {
		return 0, &FieldError{Field: ColumnGender, Message: MsgInvalidGender}
	}
	return g, nil
}

// normBreed: breed es opcional; nil o "" se guardan como NULL.
func normBreed(v any) (any, *FieldError) {
	switch b := v.(type) {
	case nil:
		return nil, nil
	case string:
		b = strings.TrimSpace(b)
		if b == "" {
			return nil, nil
		}
		return b, nil
	default:
		return nil, &FieldError{Field: ColumnBreed, Message: MsgInvalidBreed}
	}
}

// checkSelection valida que la proyección y el orden solo usen columnas
// de la tabla. El filtro no se valida: pasa tal cual al motor con sus args.
func checkSelection(sel Selection) error {
	for _, c := range sel.Projection {
		if !IsColumn(c) {
			return fmt.Errorf("%w: %q", ErrUnknownColumn, c)
		}
	}
	if strings.TrimSpace(sel.SortOrder) == "" {
		return nil
	}
	for _, term := range strings.Split(sel.SortOrder, ",") {
		f := strings.Fields(term)
		if len(f) == 0 || len(f) > 2 || !IsColumn(f[0]) {
			return fmt.Errorf("%w: sort order %q", ErrUnknownColumn, sel.SortOrder)
		}
		if len(f) == 2 {
			dir := strings.ToUpper(f[1])
			if dir != "ASC" && dir != "DESC" {
				return fmt.Errorf("%w: sort order %q", ErrUnknownColumn, sel.SortOrder)
			}
		}
	}
	return nil
}
