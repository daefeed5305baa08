package dispatch_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"markup-binder/diagnostic"
	"markup-binder/dispatch"
	"markup-binder/markup"
	"markup-binder/model"
	"markup-binder/store"
)

var (
	alpha   = reflect.TypeFor[store.Alpha]()
	bravo   = reflect.TypeFor[store.Bravo]()
	charlie = reflect.TypeFor[store.Charlie]()
)

func newDispatcher(t *testing.T) (*dispatch.Dispatcher, *model.Registry) {
	t.Helper()

	r, err := store.NewRegistry()
	require.NoError(t, err)

	return dispatch.New(r, 8), r
}

func TestSelect(t *testing.T) {
	d, _ := newDispatcher(t)

	tests := []struct {
		name       string
		candidates []reflect.Type
		tag        markup.QName
		hint       markup.QName
		want       reflect.Type
	}{
		{"hinted subtype", []reflect.Type{alpha, bravo}, markup.Name("shape"), store.CharlieName, charlie},
		{"hint equal to candidate", []reflect.Type{alpha, bravo}, markup.Name("shape"), store.AlphaName, alpha},
		{"hint outside candidates falls through", []reflect.Type{alpha}, store.AlphaName, store.BravoName, alpha},
		{"unknown hint falls through", []reflect.Type{alpha, bravo}, store.BravoName, markup.Name("circle"), bravo},
		{"own name", []reflect.Type{alpha, bravo}, store.BravoName, markup.QName{}, bravo},
		{"substitution name", []reflect.Type{alpha, bravo}, store.SquareName, markup.QName{}, alpha},
		{"declared element", []reflect.Type{alpha, bravo}, markup.Name("label"), markup.QName{}, bravo},
		{"first candidate wins", []reflect.Type{charlie, bravo}, markup.Name("label"), markup.QName{}, charlie},
		{"name beats earlier substitution", []reflect.Type{charlie, bravo}, store.BravoName, markup.QName{}, bravo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.Select(tt.candidates, tt.tag, tt.hint)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectUnknown(t *testing.T) {
	d, _ := newDispatcher(t)

	_, err := d.Select([]reflect.Type{alpha, bravo}, markup.Name("circle"), markup.QName{})
	require.ErrorIs(t, err, diagnostic.CodeUnknownVariant)

	de, ok := diagnostic.As(err)
	require.True(t, ok)
	assert.Equal(t, "circle", de.Name)
}

func TestSelectField(t *testing.T) {
	d, r := newDispatcher(t)

	m := r.MustResolve(reflect.TypeFor[store.Drawing]())
	shapes, ok := m.Element(markup.Name("shape"))
	require.True(t, ok)

	for range 3 {
		got, err := d.SelectField(shapes, markup.Name("shape"), store.CharlieName)
		require.NoError(t, err)
		assert.Equal(t, charlie, got)
	}

	got, err := d.SelectField(shapes, store.SquareName, markup.QName{})
	require.NoError(t, err)
	assert.Equal(t, alpha, got)

	// A registered type that cannot be stored in the field is not a valid hint.
	_, err = d.SelectField(shapes, markup.Name("shape"), store.PurchaseOrderName)
	require.ErrorIs(t, err, diagnostic.CodeUnknownVariant)

	d.Purge()

	got, err = d.SelectField(shapes, store.BravoName, markup.QName{})
	require.NoError(t, err)
	assert.Equal(t, bravo, got)
}

func TestSelectRoot(t *testing.T) {
	d, _ := newDispatcher(t)

	got, err := d.SelectRoot(store.PurchaseOrderName, markup.QName{})
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeFor[store.PurchaseOrder](), got)

	got, err = d.SelectRoot(markup.Name("order"), store.DrawingName)
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeFor[store.Drawing](), got)

	_, err = d.SelectRoot(markup.Name("order"), markup.QName{})
	require.ErrorIs(t, err, diagnostic.CodeUnknownVariant)
}

// delta extends Bravo and is registered after selections have been cached.
type delta struct {
	store.Bravo
}

func TestSelectFieldAfterRegister(t *testing.T) {
	d, r := newDispatcher(t)
	deltaName := markup.NS(store.Namespace, "delta")

	shapes, ok := r.MustResolve(reflect.TypeFor[store.Drawing]()).Element(store.BravoName)
	require.True(t, ok)

	got, err := d.SelectField(shapes, store.BravoName, deltaName)
	require.NoError(t, err)
	assert.Equal(t, bravo, got, "an unknown hint falls through to the name")

	before := r.Generation()
	require.NoError(t, r.Register(model.Spec[delta](deltaName).Extends(bravo)))
	assert.NotEqual(t, before, r.Generation())

	got, err = d.SelectField(shapes, store.BravoName, deltaName)
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeFor[delta](), got)
}
