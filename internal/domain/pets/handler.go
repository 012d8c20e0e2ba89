package pets

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"pet-shelter/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// Mensajes que ve el usuario después de cada escritura.
const (
	MsgSaveFailed   = "Error with saving pet"
	MsgUpdated      = "Pet updated"
	MsgUpdateFailed = "Error with updating pet"
	MsgDeleted      = "Pet deleted"
	MsgDeleteFailed = "Error with deleting pet"
	MsgAllDeleted   = "All pets deleted"
)

func MsgSaved(id int64) string { return "Pet saved with id: " + strconv.FormatInt(id, 10) }

// RegisterRoutes expone el Dispatcher por HTTP. Cada endpoint es una de las
// pantallas de la app: catálogo (listar, dummy, borrar todo) y editor
// (ver, crear, editar, borrar).
func RegisterRoutes(r chi.Router, d *Dispatcher, log logger.Logger) {
	if log == nil {
		log = logger.Nop()
	}

	r.Route("/pets", func(pr chi.Router) {
		pr.Get("/", listPetsHandler(d))
		pr.Post("/", createPetHandler(d))
		pr.Delete("/", deleteAllPetsHandler(d))

		// Catálogo: "Insert dummy data"
		pr.Post("/dummy", insertDummyHandler(d))

		// Cambios en vivo para refrescar el catálogo
		pr.Get("/changes", changesHandler(d, log))

		pr.Get("/{petID}", getPetHandler(d))
		pr.Patch("/{petID}", updatePetHandler(d))
		pr.Delete("/{petID}", deletePetHandler(d))
	})
}

type petResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Breed       *string `json:"breed"`
	Gender      int64   `json:"gender"`
	GenderLabel string  `json:"gender_label"`
	Weight      int64   `json:"weight"`
}

type writeResponse struct {
	ID      int64  `json:"id,omitempty"`
	URI     string `json:"uri,omitempty"`
	Rows    *int64 `json:"rows,omitempty"`
	Message string `json:"message"`
}

type fieldErrorResponse struct {
	Error   string `json:"error"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// listPetsHandler godoc
// @Summary  Lista mascotas
// @Param    sort   query string false "orden, ej: name ASC"
// @Param    name   query string false "filtro exacto por nombre"
// @Param    breed  query string false "filtro exacto por raza"
// @Param    gender query int    false "0, 1 o 2"
// @Success  200 {array} petResponse
// @Router   /pets [get]
func listPetsHandler(d *Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		var (
			conds []string
			args  []any
		)
		for _, col := range []string{ColumnName, ColumnBreed, ColumnGender} {
			if v := strings.TrimSpace(q.Get(col)); v != "" {
				conds = append(conds, col+" = ?")
				args = append(args, v)
			}
		}

		c, err := d.Query(r.Context(), CollectionURI, Selection{
			Filter:    strings.Join(conds, " AND "),
			Args:      args,
			SortOrder: q.Get("sort"),
		})
		if err != nil {
			writeDispatchError(w, err)
			return
		}

		out := make([]petResponse, 0, c.Len())
		for _, row := range c.Rows {
			out = append(out, toPetResponse(PetFromRow(row)))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// createPetHandler godoc
// @Summary  Crea una mascota
// @Accept   json
// @Success  201 {object} writeResponse
// @Failure  422 {object} fieldErrorResponse
// @Router   /pets [post]
func createPetHandler(d *Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		values, err := decodeValues(r)
		if err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		insert(w, r, d, values)
	}
}

// insertDummyHandler godoc
// @Summary  Inserta la mascota de ejemplo (Toto, Terrier)
// @Success  201 {object} writeResponse
// @Router   /pets/dummy [post]
func insertDummyHandler(d *Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		insert(w, r, d, DummyPet().Values())
	}
}

func insert(w http.ResponseWriter, r *http.Request, d *Dispatcher, values Values) {
	res, err := d.Insert(r.Context(), CollectionURI, values)
	if err != nil {
		writeDispatchError(w, err)
		return
	}
	if !res.OK() {
		writeFieldError(w, res.Invalid)
		return
	}

	w.Header().Set("Location", "/pets/"+strconv.FormatInt(res.ID, 10))
	writeJSON(w, http.StatusCreated, writeResponse{ID: res.ID, URI: res.URI, Message: MsgSaved(res.ID)})
}

// getPetHandler godoc
// @Summary  Devuelve una mascota
// @Param    petID path int true "id"
// @Success  200 {object} petResponse
// @Failure  404 {string} string
// @Router   /pets/{petID} [get]
func getPetHandler(d *Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := petIDParam(w, r)
		if !ok {
			return
		}

		c, err := d.Query(r.Context(), ItemURI(id), Selection{Projection: AllColumns})
		if err != nil {
			writeDispatchError(w, err)
			return
		}
		if c.Len() == 0 {
			http.Error(w, "pet not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toPetResponse(PetFromRow(c.Rows[0])))
	}
}

// updatePetHandler godoc
// @Summary  Actualiza solo los campos enviados
// @Accept   json
// @Param    petID path int true "id"
// @Success  200 {object} writeResponse
// @Failure  404 {object} writeResponse
// @Failure  422 {object} fieldErrorResponse
// @Router   /pets/{petID} [patch]
func updatePetHandler(d *Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := petIDParam(w, r)
		if !ok {
			return
		}
		values, err := decodeValues(r)
		if err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		res, err := d.Update(r.Context(), ItemURI(id), values, Selection{})
		if err != nil {
			writeDispatchError(w, err)
			return
		}
		if !res.OK() {
			writeFieldError(w, res.Invalid)
			return
		}

		rows := res.Rows
		// Body vacío: nada que cambiar, no es un error.
		if len(values) == 0 {
			writeJSON(w, http.StatusOK, writeResponse{Rows: &rows, Message: MsgUpdated})
			return
		}
		if rows == 0 {
			writeJSON(w, http.StatusNotFound, writeResponse{Rows: &rows, Message: MsgUpdateFailed})
			return
		}
		writeJSON(w, http.StatusOK, writeResponse{Rows: &rows, Message: MsgUpdated})
	}
}

// deletePetHandler godoc
// @Summary  Borra una mascota
// @Param    petID path int true "id"
// @Success  200 {object} writeResponse
// @Failure  404 {object} writeResponse
// @Router   /pets/{petID} [delete]
func deletePetHandler(d *Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := petIDParam(w, r)
		if !ok {
			return
		}

		n, err := d.Delete(r.Context(), ItemURI(id), Selection{})
		if err != nil {
			writeDispatchError(w, err)
			return
		}
		if n == 0 {
			writeJSON(w, http.StatusNotFound, writeResponse{Rows: &n, Message: MsgDeleteFailed})
			return
		}
		writeJSON(w, http.StatusOK, writeResponse{Rows: &n, Message: MsgDeleted})
	}
}

// deleteAllPetsHandler godoc
// @Summary  Borra todas las mascotas
// @Success  200 {object} writeResponse
// @Router   /pets [delete]
func deleteAllPetsHandler(d *Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := d.Delete(r.Context(), CollectionURI, Selection{})
		if err != nil {
			writeDispatchError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, writeResponse{Rows: &n, Message: MsgAllDeleted})
	}
}

// changesHandler godoc
// @Summary  Stream (SSE) de identificadores que cambiaron
// @Produce  text/event-stream
// @Router   /pets/changes [get]
func changesHandler(d *Dispatcher, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		// Si el cliente no lee, se descartan cambios: igual va a releer todo.
		changes := make(chan string, 16)
		cancel := d.Watch(CollectionURI, func(uri string) {
			select {
			case changes <- uri:
			default:
			}
		})
		defer cancel()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, ": watching "+CollectionURI+"\n\n")
		flusher.Flush()

		for {
			select {
			case <-r.Context().Done():
				return
			case uri := <-changes:
				if _, err := fmt.Fprintf(w, "event: change\ndata: %s\n\n", uri); err != nil {
					log.Debug("sse write failed", map[string]any{"err": err})
					return
				}
				flusher.Flush()
			}
		}
	}
}

// DummyPet es la mascota que inserta el menú "Insert dummy data".
func DummyPet() Pet {
	breed := "Terrier"
	return Pet{Name: "Toto", Breed: &breed, Gender: GenderMale, Weight: 7}
}

func decodeValues(r *http.Request) (Values, error) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return Values(raw), nil
}

func petIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "petID"), 10, 64)
	if err != nil || id < 0 {
		http.Error(w, "invalid pet id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeDispatchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnsupportedTarget):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, ErrUnknownColumn):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeFieldError(w http.ResponseWriter, fe *FieldError) {
	writeJSON(w, http.StatusUnprocessableEntity, fieldErrorResponse{
		Error:   fe.Error(),
		Field:   fe.Field,
		Message: fe.Message,
	})
}

func toPetResponse(p Pet) petResponse {
	return petResponse{
		ID:          p.ID,
		Name:        p.Name,
		Breed:       p.Breed,
		Gender:      int64(p.Gender),
		GenderLabel: p.Gender.String(),
		Weight:      p.Weight,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
