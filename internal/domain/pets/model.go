package pets

import "strconv"

// Esquema de la tabla de mascotas del refugio.
// Todas las capas (dispatcher, storage, handlers) usan estas constantes.
const (
	DatabaseName    = "shelter.db"
	DatabaseVersion = 1

	TableName = "pets"

	ColumnID     = "_id"
	ColumnName   = "name"
	ColumnBreed  = "breed"
	ColumnGender = "gender"
	ColumnWeight = "weight"
)

// AllColumns en el orden en que se crean en la tabla.
var AllColumns = []string{ColumnID, ColumnName, ColumnBreed, ColumnGender, ColumnWeight}

// IsColumn indica si name es una columna conocida de la tabla.
func IsColumn(name string) bool {
	for _, c := range AllColumns {
		if c == name {
			return true
		}
	}
	return false
}

// Gender define el sexo de la mascota.
// @Enum 0, 1, 2
type Gender int64

const (
	GenderUnknown Gender = 0
	GenderMale    Gender = 1
	GenderFemale  Gender = 2
)

func (g Gender) String() string {
	switch g {
	case GenderMale:
		return "male"
	case GenderFemale:
		return "female"
	case GenderUnknown:
		return "unknown"
	default:
		return strconv.FormatInt(int64(g), 10)
	}
}

// IsValidGender devuelve true solo para UNKNOWN, MALE o FEMALE.
func IsValidGender(v int64) bool {
	return v == int64(GenderUnknown) || v == int64(GenderMale) || v == int64(GenderFemale)
}

// Identificadores de contenido.
const (
	ContentScheme    = "content"
	ContentAuthority = "com.example.android.pets"
	PathPets         = "pets"

	BaseContentURI = ContentScheme + "://" + ContentAuthority
	CollectionURI  = BaseContentURI + "/" + PathPets

	// Tags MIME-like que devuelve Dispatcher.Type.
	ContentListType = "vnd.android.cursor.dir/" + ContentAuthority + "/" + PathPets
	ContentItemType = "vnd.android.cursor.item/" + ContentAuthority + "/" + PathPets
)

// ItemURI arma el identificador de una sola mascota: CollectionURI + "/" + id.
func ItemURI(id int64) string {
	return CollectionURI + "/" + strconv.FormatInt(id, 10)
}

// Pet es la fila completa de la tabla.
type Pet struct {
	ID     int64
	Name   string
	Breed  *string // nullable
	Gender Gender
	Weight int64
}

// Values devuelve el mapping de columnas listo para Insert (sin _id).
func (p Pet) Values() Values {
	v := Values{
		ColumnName:   p.Name,
		ColumnGender: int64(p.Gender),
		ColumnWeight: p.Weight,
	}
	if p.Breed != nil {
		v[ColumnBreed] = *p.Breed
	} else {
		v[ColumnBreed] = nil
	}
	return v
}

// PetFromRow arma un Pet desde una fila con proyección completa.
// Columnas ausentes quedan en su zero value.
func PetFromRow(r Row) Pet {
	p := Pet{
		ID:     r.Int64(ColumnID),
		Name:   r.String(ColumnName),
		Gender: Gender(r.Int64(ColumnGender)),
		Weight: r.Int64(ColumnWeight),
	}
	if v, ok := r[ColumnBreed]; ok && v != nil {
		b := r.String(ColumnBreed)
		p.Breed = &b
	}
	return p
}
