package pets_test

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"pet-shelter/internal/adapters/storage/sqlite"
	"pet-shelter/internal/domain/pets"
)

func newDispatcher(t *testing.T) *pets.Dispatcher {
	t.Helper()
	db, err := sqlite.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return pets.NewDispatcher(sqlite.NewPetsRepo(db), pets.DefaultRoutes())
}

func toto() pets.Values {
	return pets.Values{
		pets.ColumnName:   "Toto",
		pets.ColumnBreed:  "Terrier",
		pets.ColumnGender: pets.GenderMale,
		pets.ColumnWeight: 7,
	}
}

func countRows(t *testing.T, d *pets.Dispatcher) int {
	t.Helper()
	c, err := d.Query(context.Background(), pets.CollectionURI, pets.Selection{})
	require.NoError(t, err)
	return c.Len()
}

func TestInsert_ValidPets_GetFreshIDs(t *testing.T) {
	d := newDispatcher(t)
	ctx := context.Background()

	seen := map[int64]bool{}
	for _, g := range []pets.Gender{pets.GenderUnknown, pets.GenderMale, pets.GenderFemale} {
		for _, w := range []int{0, 1, 40} {
			res, err := d.Insert(ctx, pets.CollectionURI, pets.Values{
				pets.ColumnName:   "Pet",
				pets.ColumnGender: g,
				pets.ColumnWeight: w,
			})
			require.NoError(t, err)
			require.True(t, res.OK())
			require.GreaterOrEqual(t, res.ID, int64(0))
			require.False(t, seen[res.ID], "id %d reused", res.ID)
			seen[res.ID] = true
			require.Equal(t, pets.ItemURI(res.ID), res.URI)
		}
	}
	require.Equal(t, 9, countRows(t, d))
}

func TestInsert_InvalidFields_ReturnFieldErrorAndCreateNothing(t *testing.T) {
	cases := []struct {
		name  string
		mod   func(pets.Values)
		field string
	}{
		{"empty name", func(v pets.Values) { v[pets.ColumnName] = "" }, pets.ColumnName},
		{"blank name", func(v pets.Values) { v[pets.ColumnName] = "   " }, pets.ColumnName},
		{"missing name", func(v pets.Values) { delete(v, pets.ColumnName) }, pets.ColumnName},
		{"negative weight", func(v pets.Values) { v[pets.ColumnWeight] = -1 }, pets.ColumnWeight},
		{"missing weight", func(v pets.Values) { delete(v, pets.ColumnWeight) }, pets.ColumnWeight},
		{"weight not a number", func(v pets.Values) { v[pets.ColumnWeight] = "heavy" }, pets.ColumnWeight},
		{"gender out of domain", func(v pets.Values) { v[pets.ColumnGender] = 3 }, pets.ColumnGender},
		{"negative gender", func(v pets.Values) { v[pets.ColumnGender] = -1 }, pets.ColumnGender},
		{"missing gender", func(v pets.Values) { delete(v, pets.ColumnGender) }, pets.ColumnGender},
		{"id supplied", func(v pets.Values) { v[pets.ColumnID] = 5 }, pets.ColumnID},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := newDispatcher(t)
			v := toto()
			tc.mod(v)

			res, err := d.Insert(context.Background(), pets.CollectionURI, v)
			require.NoError(t, err)
			require.False(t, res.OK())
			require.Equal(t, tc.field, res.Invalid.Field)
			require.Equal(t, "InvalidField:"+tc.field, res.Invalid.Error())
			require.Empty(t, res.URI)
			require.Equal(t, 0, countRows(t, d))
		})
	}
}

func TestInsert_ValidatesInOrder(t *testing.T) {
	d := newDispatcher(t)

	res, err := d.Insert(context.Background(), pets.CollectionURI, pets.Values{
		pets.ColumnName:   "",
		pets.ColumnWeight: -3,
		pets.ColumnGender: 9,
	})
	require.NoError(t, err)
	require.Equal(t, pets.ColumnName, res.Invalid.Field)

	res, err = d.Insert(context.Background(), pets.CollectionURI, pets.Values{
		pets.ColumnName:   "Rex",
		pets.ColumnWeight: -3,
		pets.ColumnGender: 9,
	})
	require.NoError(t, err)
	require.Equal(t, pets.ColumnWeight, res.Invalid.Field)
}

func TestInsert_OnItemTarget_IsUnsupported(t *testing.T) {
	d := newDispatcher(t)

	_, err := d.Insert(context.Background(), pets.ItemURI(1), toto())
	require.ErrorIs(t, err, pets.ErrUnsupportedTarget)
}

func TestInsert_AcceptsJSONNumbers(t *testing.T) {
	d := newDispatcher(t)

	res, err := d.Insert(context.Background(), pets.CollectionURI, pets.Values{
		pets.ColumnName:   "Milo",
		pets.ColumnGender: json.Number("2"),
		pets.ColumnWeight: float64(12),
	})
	require.NoError(t, err)
	require.True(t, res.OK())
}

func TestInsert_UnknownColumn_IsFatal(t *testing.T) {
	d := newDispatcher(t)
	v := toto()
	v["species"] = "dog"

	_, err := d.Insert(context.Background(), pets.CollectionURI, v)
	require.ErrorIs(t, err, pets.ErrUnknownColumn)
}

func TestQuery_ItemAfterInsert_ReturnsAllFields(t *testing.T) {
	d := newDispatcher(t)
	ctx := context.Background()

	res, err := d.Insert(ctx, pets.CollectionURI, toto())
	require.NoError(t, err)

	c, err := d.Query(ctx, res.URI, pets.Selection{})
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())
	require.Equal(t, res.URI, c.NotificationURI)

	p := pets.PetFromRow(c.Rows[0])
	require.Equal(t, res.ID, p.ID)
	require.Equal(t, "Toto", p.Name)
	require.NotNil(t, p.Breed)
	require.Equal(t, "Terrier", *p.Breed)
	require.Equal(t, pets.GenderMale, p.Gender)
	require.EqualValues(t, 7, p.Weight)
}

func TestQuery_ItemIgnoresCallerFilter(t *testing.T) {
	d := newDispatcher(t)
	ctx := context.Background()

	res, err := d.Insert(ctx, pets.CollectionURI, toto())
	require.NoError(t, err)

	c, err := d.Query(ctx, res.URI, pets.Selection{Filter: "name = ?", Args: []any{"nobody"}})
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())
}

func TestQuery_CollectionPassesFilterSortAndProjection(t *testing.T) {
	d := newDispatcher(t)
	ctx := context.Background()

	for _, n := range []string{"Charlie", "Alfie", "Bella"} {
		v := toto()
		v[pets.ColumnName] = n
		_, err := d.Insert(ctx, pets.CollectionURI, v)
		require.NoError(t, err)
	}

	c, err := d.Query(ctx, pets.CollectionURI, pets.Selection{
		Projection: []string{pets.ColumnName},
		Filter:     "name <> ?",
		Args:       []any{"Bella"},
		SortOrder:  "name DESC",
	})
	require.NoError(t, err)
	require.Equal(t, []string{pets.ColumnName}, c.Columns)
	require.Equal(t, 2, c.Len())
	require.Equal(t, "Charlie", c.Rows[0].String(pets.ColumnName))
	require.Equal(t, "Alfie", c.Rows[1].String(pets.ColumnName))
	require.Equal(t, pets.CollectionURI, c.NotificationURI)
}

func TestQuery_EmptyTableReturnsEmptyCursor(t *testing.T) {
	d := newDispatcher(t)

	c, err := d.Query(context.Background(), pets.CollectionURI, pets.Selection{})
	require.NoError(t, err)
	require.NotNil(t, c.Rows)
	require.Equal(t, 0, c.Len())
}

func TestQuery_RejectsUnknownProjectionAndSort(t *testing.T) {
	d := newDispatcher(t)
	ctx := context.Background()

	_, err := d.Query(ctx, pets.CollectionURI, pets.Selection{Projection: []string{"owner"}})
	require.ErrorIs(t, err, pets.ErrUnknownColumn)

	_, err = d.Query(ctx, pets.CollectionURI, pets.Selection{SortOrder: "name; DROP TABLE pets"})
	require.ErrorIs(t, err, pets.ErrUnknownColumn)
}

func TestUpdate_EmptyValues_ReturnsZeroAndChangesNothing(t *testing.T) {
	d := newDispatcher(t)
	ctx := context.Background()

	res, err := d.Insert(ctx, pets.CollectionURI, toto())
	require.NoError(t, err)

	notified := 0
	cancel := d.Watch(pets.CollectionURI, func(string) { notified++ })
	defer cancel()

	up, err := d.Update(ctx, pets.CollectionURI, pets.Values{}, pets.Selection{})
	require.NoError(t, err)
	require.True(t, up.OK())
	require.EqualValues(t, 0, up.Rows)
	require.Equal(t, 0, notified)

	c, err := d.Query(ctx, res.URI, pets.Selection{})
	require.NoError(t, err)
	require.Equal(t, "Toto", c.Rows[0].String(pets.ColumnName))
}

func TestUpdate_EmptyName_FailsAndLeavesRow(t *testing.T) {
	d := newDispatcher(t)
	ctx := context.Background()

	res, err := d.Insert(ctx, pets.CollectionURI, toto())
	require.NoError(t, err)

	up, err := d.Update(ctx, res.URI, pets.Values{pets.ColumnName: "", pets.ColumnWeight: 3}, pets.Selection{})
	require.NoError(t, err)
	require.False(t, up.OK())
	require.Equal(t, pets.ColumnName, up.Invalid.Field)
	require.EqualValues(t, 0, up.Rows)

	c, err := d.Query(ctx, res.URI, pets.Selection{})
	require.NoError(t, err)
	p := pets.PetFromRow(c.Rows[0])
	require.Equal(t, "Toto", p.Name)
	require.EqualValues(t, 7, p.Weight)
}

func TestUpdate_ValidatesOnlySuppliedFields(t *testing.T) {
	d := newDispatcher(t)
	ctx := context.Background()

	res, err := d.Insert(ctx, pets.CollectionURI, toto())
	require.NoError(t, err)

	up, err := d.Update(ctx, res.URI, pets.Values{pets.ColumnGender: pets.GenderFemale}, pets.Selection{})
	require.NoError(t, err)
	require.True(t, up.OK())
	require.EqualValues(t, 1, up.Rows)

	for field, v := range map[string]any{
		pets.ColumnWeight: -2,
		pets.ColumnGender: 5,
		pets.ColumnID:     99,
	} {
		up, err := d.Update(ctx, res.URI, pets.Values{field: v}, pets.Selection{})
		require.NoError(t, err)
		require.False(t, up.OK())
		require.Equal(t, field, up.Invalid.Field)
	}
}

func TestUpdate_CollectionUsesFilter(t *testing.T) {
	d := newDispatcher(t)
	ctx := context.Background()

	for _, w := range []int{1, 2, 30} {
		v := toto()
		v[pets.ColumnWeight] = w
		_, err := d.Insert(ctx, pets.CollectionURI, v)
		require.NoError(t, err)
	}

	up, err := d.Update(ctx, pets.CollectionURI, pets.Values{pets.ColumnBreed: "Mixed"}, pets.Selection{
		Filter: "weight < ?",
		Args:   []any{10},
	})
	require.NoError(t, err)
	require.EqualValues(t, 2, up.Rows)

	c, err := d.Query(ctx, pets.CollectionURI, pets.Selection{Filter: "breed = ?", Args: []any{"Mixed"}})
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())
}

func TestRoundTrip_InsertQueryUpdateQuery(t *testing.T) {
	d := newDispatcher(t)
	ctx := context.Background()

	res, err := d.Insert(ctx, pets.CollectionURI, toto())
	require.NoError(t, err)

	c, err := d.Query(ctx, res.URI, pets.Selection{})
	require.NoError(t, err)
	before := pets.PetFromRow(c.Rows[0])

	up, err := d.Update(ctx, res.URI, pets.Values{pets.ColumnWeight: 11}, pets.Selection{})
	require.NoError(t, err)
	require.EqualValues(t, 1, up.Rows)

	c, err = d.Query(ctx, res.URI, pets.Selection{})
	require.NoError(t, err)
	after := pets.PetFromRow(c.Rows[0])

	require.EqualValues(t, 11, after.Weight)
	before.Weight = after.Weight
	require.Equal(t, before, after)
}

func TestDelete_MissingItem_ReturnsZero(t *testing.T) {
	d := newDispatcher(t)

	n, err := d.Delete(context.Background(), pets.ItemURI(12345), pets.Selection{})
	require.NoError(t, err)
	require.EqualValues(t, 0, n)
}

func TestDelete_ItemAndCollection(t *testing.T) {
	d := newDispatcher(t)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		res, err := d.Insert(ctx, pets.CollectionURI, toto())
		require.NoError(t, err)
		ids = append(ids, res.ID)
	}

	n, err := d.Delete(ctx, pets.ItemURI(ids[0]), pets.Selection{Filter: "1 = 1"})
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	n, err = d.Delete(ctx, pets.CollectionURI, pets.Selection{})
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
	require.Equal(t, 0, countRows(t, d))
}

func TestType_TagsAndUnsupported(t *testing.T) {
	d := newDispatcher(t)

	list, err := d.Type(pets.CollectionURI)
	require.NoError(t, err)
	item, err := d.Type(pets.ItemURI(3))
	require.NoError(t, err)

	require.Equal(t, pets.ContentListType, list)
	require.Equal(t, pets.ContentItemType, item)
	require.NotEqual(t, list, item)

	again, err := d.Type(pets.ItemURI(99))
	require.NoError(t, err)
	require.Equal(t, item, again)

	for _, uri := range []string{
		"content://other.authority/pets",
		pets.BaseContentURI,
		pets.CollectionURI + "/abc",
		pets.CollectionURI + "/-1",
		pets.CollectionURI + "/1/2",
		pets.BaseContentURI + "/owners",
	} {
		_, err := d.Type(uri)
		require.ErrorIs(t, err, pets.ErrUnsupportedTarget, uri)
	}
}

func TestUnsupportedTarget_ForEveryOperation(t *testing.T) {
	d := newDispatcher(t)
	ctx := context.Background()
	bad := pets.BaseContentURI + "/owners"

	_, err := d.Query(ctx, bad, pets.Selection{})
	require.True(t, errors.Is(err, pets.ErrUnsupportedTarget))
	_, err = d.Insert(ctx, bad, toto())
	require.True(t, errors.Is(err, pets.ErrUnsupportedTarget))
	_, err = d.Update(ctx, bad, toto(), pets.Selection{})
	require.True(t, errors.Is(err, pets.ErrUnsupportedTarget))
	_, err = d.Delete(ctx, bad, pets.Selection{})
	require.True(t, errors.Is(err, pets.ErrUnsupportedTarget))
}

func TestWatch_NotifiesRelatedURIsAfterWrites(t *testing.T) {
	d := newDispatcher(t)
	ctx := context.Background()

	var onList, onItem, onOther []string
	cancelList := d.Watch(pets.CollectionURI, func(u string) { onList = append(onList, u) })
	defer cancelList()

	res, err := d.Insert(ctx, pets.CollectionURI, toto())
	require.NoError(t, err)
	require.Equal(t, []string{pets.CollectionURI}, onList)

	cancelItem := d.Watch(res.URI, func(u string) { onItem = append(onItem, u) })
	cancelOther := d.Watch(pets.ItemURI(res.ID+100), func(u string) { onOther = append(onOther, u) })
	defer cancelOther()

	_, err = d.Update(ctx, res.URI, pets.Values{pets.ColumnWeight: 8}, pets.Selection{})
	require.NoError(t, err)
	require.Equal(t, []string{pets.CollectionURI, res.URI}, onList)
	require.Equal(t, []string{res.URI}, onItem)
	require.Empty(t, onOther)

	// Un cambio sobre la colección le llega también a los items.
	_, err = d.Delete(ctx, pets.CollectionURI, pets.Selection{})
	require.NoError(t, err)
	require.Len(t, onItem, 2)
	require.Len(t, onOther, 1)

	cancelItem()
	cancelItem()
	_, err = d.Delete(ctx, pets.ItemURI(res.ID), pets.Selection{})
	require.NoError(t, err)
	require.Len(t, onItem, 2)
}

func TestWrites_NonCanonicalURIs_UseResolvedTarget(t *testing.T) {
	d := newDispatcher(t)
	ctx := context.Background()

	var onList, onItem []string
	defer d.Watch(pets.CollectionURI, func(u string) { onList = append(onList, u) })()

	res, err := d.Insert(ctx, pets.CollectionURI+"?src=ui", toto())
	require.NoError(t, err)
	require.Equal(t, pets.ItemURI(res.ID), res.URI)
	require.Equal(t, []string{pets.CollectionURI}, onList)

	typ, err := d.Type(res.URI)
	require.NoError(t, err)
	require.Equal(t, pets.ContentItemType, typ)

	res2, err := d.Insert(ctx, pets.CollectionURI+"/", toto())
	require.NoError(t, err)
	require.Equal(t, pets.ItemURI(res2.ID), res2.URI)

	// Watch también normaliza: "/00N" es el mismo item.
	padded := pets.CollectionURI + "/00" + strconv.FormatInt(res.ID, 10)
	defer d.Watch(padded, func(u string) { onItem = append(onItem, u) })()

	up, err := d.Update(ctx, padded, pets.Values{pets.ColumnWeight: 9}, pets.Selection{})
	require.NoError(t, err)
	require.EqualValues(t, 1, up.Rows)
	require.Equal(t, []string{res.URI}, onItem)
	require.Equal(t, res.URI, onList[len(onList)-1])

	c, err := d.Query(ctx, padded, pets.Selection{})
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())
	require.Equal(t, res.URI, c.NotificationURI)

	n, err := d.Delete(ctx, pets.ItemURI(res2.ID)+"?x=1", pets.Selection{})
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	require.Equal(t, pets.ItemURI(res2.ID), onList[len(onList)-1])
	require.Len(t, onItem, 1)
}

func TestWatch_NoNotificationOnValidationFailure(t *testing.T) {
	d := newDispatcher(t)

	notified := false
	defer d.Watch(pets.CollectionURI, func(string) { notified = true })()

	res, err := d.Insert(context.Background(), pets.CollectionURI, pets.Values{pets.ColumnName: ""})
	require.NoError(t, err)
	require.False(t, res.OK())
	require.False(t, notified)
}
