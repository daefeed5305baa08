package binder_test

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"markup-binder/binder"
	"markup-binder/descriptor"
	"markup-binder/diagnostic"
	"markup-binder/dispatch"
	"markup-binder/markup"
	"markup-binder/markup/xmlio"
	"markup-binder/model"
	"markup-binder/options"
	"markup-binder/store"
)

const ext = "urn:example:ext"

const (
	shipTo = `<shipTo><name>Ann</name><city>Oslo</city></shipTo>`
	item   = `<item sku="a"><productName>Pen</productName><quantity>2</quantity></item>`
	card   = `<card>4111</card>`
)

// pair has a sequence group followed by an ungrouped element.
type pair struct {
	First  string `bind:"element,name=first,group=1"`
	Second string `bind:"element,name=second,group=1"`
	Note   string `bind:"element,name=note"`
}

func newBinder(t *testing.T, opts ...options.Option) *binder.Binder {
	t.Helper()

	r, err := store.NewRegistry()
	require.NoError(t, err)
	require.NoError(t, r.Register(
		model.Spec[pair](markup.Name("pair")),
		model.Spec[captioned](markup.Name("captioned")),
		model.Spec[remark](markup.Name("remark")).AsMixed(),
	))

	policy := options.New(opts...)

	return binder.New(r, dispatch.New(r, policy.DispatchCacheSize), policy)
}

func decode(t *testing.T, b *binder.Binder, doc string) (any, error) {
	t.Helper()

	src, err := xmlio.NewReader(strings.NewReader(doc))
	require.NoError(t, err)

	return b.Decode(src)
}

func orderAttrs(attrs, body string) string {
	return `<po:purchaseOrder xmlns:po="urn:example:store"` +
		` xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"` +
		` xmlns:ext="` + ext + `"` + attrs + `>` + body + `</po:purchaseOrder>`
}

func order(body string) string {
	return orderAttrs(` id="PO-1"`, body)
}

func decodeOrder(t *testing.T, b *binder.Binder, body string) (*store.PurchaseOrder, error) {
	t.Helper()

	v, err := decode(t, b, order(body))
	if err != nil {
		return nil, err
	}

	po, ok := v.(*store.PurchaseOrder)
	require.True(t, ok, spew.Sdump(v))

	return po, nil
}

func requireCode(t *testing.T, err error, code diagnostic.Code) *diagnostic.Error {
	t.Helper()

	require.ErrorIs(t, err, code)

	d, ok := diagnostic.As(err)
	require.True(t, ok)

	return d
}

func TestDecodeOrder(t *testing.T) {
	b := newBinder(t)

	v, err := decode(t, b, orderAttrs(` id="PO-7" orderDate="2024-03-01T10:30:00Z" ext:channel="web"`,
		`<status>PAID</status>`+
			`<shipTo country="US"><name>Ann</name><street>1 Elm St</street><city>Oslo</city><state>CA</state></shipTo>`+
			`<billTo><name>Bob</name><city>Rome</city></billTo>`+
			`<comment>leave at door</comment>`+
			`<item sku="a"><productName>Pen</productName><quantity>2</quantity><priceCents>150</priceCents></item>`+
			`<item sku="b"><productName>Ink</productName><quantity>1</quantity><priceCents>300</priceCents><note>blue</note></item>`+
			`<tags>office  gift</tags>`+
			card+
			`<ext:tracking carrier="ups">1Z9<ext:leg n="1"/></ext:tracking>`))
	require.NoError(t, err)

	po := v.(*store.PurchaseOrder)

	assert.Equal(t, "PO-7", po.ID)
	assert.True(t, po.OrderedAt.Equal(time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)), po.OrderedAt)
	assert.Equal(t, store.StatusPaid, po.Status)
	assert.Equal(t, store.USAddress{
		Address: store.Address{Name: "Ann", Street: "1 Elm St", City: "Oslo", Country: "US"},
		State:   "CA",
	}, po.ShipTo)
	assert.Equal(t, &store.Address{Name: "Bob", City: "Rome"}, po.BillTo)

	comment, ok := po.Comment.Get()
	assert.True(t, ok)
	assert.Equal(t, "leave at door", comment)

	blue := "blue"
	assert.Equal(t, []store.Item{
		{SKU: "a", Name: "Pen", Quantity: 2, PriceCents: 150},
		{SKU: "b", Name: "Ink", Quantity: 1, PriceCents: 300, Note: &blue},
	}, po.Items)
	assert.Equal(t, int64(600), po.TotalCents())
	assert.Equal(t, []string{"office", "gift"}, po.Tags)
	assert.Equal(t, "4111", po.CardNumber)
	assert.Empty(t, po.InvoiceRef)

	assert.Equal(t, map[markup.QName]string{markup.NS(ext, "channel"): "web"}, po.Extra)
	assert.Equal(t, []*markup.Node{{
		Name:  markup.NS(ext, "tracking"),
		Attrs: []markup.Attr{{Name: markup.Name("carrier"), Value: "ups"}},
		Children: []*markup.Node{
			markup.TextNode("1Z9"),
			{Name: markup.NS(ext, "leg"), Attrs: []markup.Attr{{Name: markup.Name("n"), Value: "1"}}},
		},
	}}, po.Extensions)

	assert.Empty(t, b.Diagnostics().Warnings)
	assert.True(t, b.Done())
}

// remark is mixed content whose markup is a choice of bold or italic.
type remark struct {
	Content markup.Mixed `bind:"text"`
	Bold    string       `bind:"element,name=b,group=1,choice"`
	Italic  string       `bind:"element,name=i,group=1,choice"`
}

// captioned has a defaulted element whose empty value is legal.
type captioned struct {
	Caption string `bind:"element,name=caption,default=untitled"`
}

func TestDefaults(t *testing.T) {
	po, err := decodeOrder(t, newBinder(t), shipTo+item+card)
	require.NoError(t, err)
	assert.Equal(t, store.StatusPending, po.Status)

	// An empty element is present: the default does not replace it, so an
	// empty enum value is checked like any other.
	_, err = decodeOrder(t, newBinder(t), `<status/>`+shipTo+item+card)
	requireCode(t, err, diagnostic.CodeInvalidValue)

	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"absent", `<captioned/>`, "untitled"},
		{"empty", `<captioned><caption/></captioned>`, ""},
		{"empty pair", `<captioned><caption></caption></captioned>`, ""},
		{"given", `<captioned><caption>Map</caption></captioned>`, "Map"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := decode(t, newBinder(t), tt.doc)
			require.NoError(t, err)
			assert.Equal(t, &captioned{Caption: tt.want}, v)
		})
	}
}

func TestRequired(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
		qname string
	}{
		{"attribute", orderAttrs("", shipTo+item+card), "ID", "id"},
		{"record", order(item + card), "ShipTo", "shipTo"},
		{"nested element", order(`<shipTo><name>Ann</name></shipTo>` + item + card), "City", "city"},
		{"min occurs", order(shipTo + card), "Items", "item"},
		{"choice group", order(shipTo + item), "CardNumber", "{urn:example:store}purchaseOrder"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decode(t, newBinder(t), tt.doc)

			d := requireCode(t, err, diagnostic.CodeMissingRequiredField)
			assert.Equal(t, tt.field, d.Field)
			assert.Equal(t, tt.qname, d.Name)
			assert.Equal(t, 1, d.Line)
		})
	}
}

func TestRequiredPosition(t *testing.T) {
	doc := order("\n<shipTo>\n<name>Ann</name></shipTo>" + item + card)

	_, err := decode(t, newBinder(t), doc)

	d := requireCode(t, err, diagnostic.CodeMissingRequiredField)
	assert.Equal(t, "store.USAddress", d.Type)
	assert.Equal(t, 2, d.Line)
}

func TestTooManyOccurrences(t *testing.T) {
	billTo := `<billTo><name>Bob</name><city>Rome</city></billTo>`

	_, err := decodeOrder(t, newBinder(t), shipTo+billTo+billTo+item+card)

	d := requireCode(t, err, diagnostic.CodeTooManyOccurrences)
	assert.Equal(t, "BillTo", d.Field)
}

func TestNil(t *testing.T) {
	b := newBinder(t)

	po, err := decodeOrder(t, b, shipTo+item+card)
	require.NoError(t, err)
	assert.Equal(t, descriptor.Absent, po.Comment.State)

	b.Reset()
	po, err = decodeOrder(t, b, shipTo+`<comment xsi:nil="true"/>`+item+card)
	require.NoError(t, err)
	assert.True(t, po.Comment.IsNil())

	b.Reset()
	po, err = decodeOrder(t, b, shipTo+`<comment></comment>`+item+card)
	require.NoError(t, err)
	assert.Equal(t, descriptor.Some(""), po.Comment)

	b.Reset()
	po, err = decodeOrder(t, b, shipTo+
		`<item sku="a"><productName>Pen</productName><quantity>1</quantity>`+
		`<backorder xsi:nil="true"/><backorder>pending</backorder></item>`+card)
	require.NoError(t, err)

	pending := "pending"
	assert.Equal(t, []*string{nil, &pending}, po.Items[0].Backorder)

	b.Reset()
	_, err = decodeOrder(t, b, shipTo+`<billTo xsi:nil="1"/>`+item+card)
	d := requireCode(t, err, diagnostic.CodeIllegalNil)
	assert.Equal(t, "billTo", d.Name)
}

func TestNilRoot(t *testing.T) {
	_, err := decode(t, newBinder(t),
		`<bravo xmlns="urn:example:store" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:nil="true"/>`)
	requireCode(t, err, diagnostic.CodeIllegalNil)
}

func TestChoicePolicies(t *testing.T) {
	body := shipTo + item + `<card>1</card><invoice>2</invoice>`

	tests := []struct {
		policy  options.DuplicateChoicePolicy
		card    string
		invoice string
	}{
		{options.DuplicateLastWins, "", "2"},
		{options.DuplicateFirstWins, "1", ""},
	}

	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			po, err := decodeOrder(t, newBinder(t, options.WithDuplicateChoice(tt.policy)), body)
			require.NoError(t, err)
			assert.Equal(t, tt.card, po.CardNumber)
			assert.Equal(t, tt.invoice, po.InvoiceRef)
		})
	}

	t.Run("reject", func(t *testing.T) {
		_, err := decodeOrder(t, newBinder(t, options.WithDuplicateChoice(options.DuplicateReject)), body)

		d := requireCode(t, err, diagnostic.CodeTooManyOccurrences)
		assert.Equal(t, "CardNumber", d.Field)
	})
}

func TestRepeatedChoiceMember(t *testing.T) {
	body := shipTo + item + `<card>1</card><card>2</card>`

	po, err := decodeOrder(t, newBinder(t), body)
	require.NoError(t, err)
	assert.Equal(t, "2", po.CardNumber)

	po, err = decodeOrder(t, newBinder(t, options.WithDuplicateChoice(options.DuplicateFirstWins)), body)
	require.NoError(t, err)
	assert.Equal(t, "1", po.CardNumber)

	_, err = decodeOrder(t, newBinder(t, options.WithDuplicateChoice(options.DuplicateReject)), body)
	requireCode(t, err, diagnostic.CodeTooManyOccurrences)
}

func TestTokens(t *testing.T) {
	po, err := decodeOrder(t, newBinder(t), shipTo+item+"<tags>\n A B\tC  </tags>"+card)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, po.Tags)
}

func TestInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"enumeration", order(`<status>LOST</status>` + shipTo + item + card)},
		{"integer", order(shipTo + `<item sku="a"><productName>Pen</productName><quantity>many</quantity></item>` + card)},
		{"attribute", orderAttrs(` id="PO-1" orderDate="yesterday"`, shipTo+item+card)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decode(t, newBinder(t), tt.doc)
			requireCode(t, err, diagnostic.CodeInvalidValue)
		})
	}
}

const drawing = `<d:drawing xmlns:d="urn:example:store" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" title="Plan">` +
	`<d:alpha side="2"/>` +
	`<d:square side="3"/>` +
	`<d:bravo width="2" height="3"><label>box</label></d:bravo>` +
	`<shape xsi:type="d:charlie" width="1" height="2" depth="3"/>` +
	`<memo>keep</memo>` +
	`</d:drawing>`

func TestPolymorphic(t *testing.T) {
	v, err := decode(t, newBinder(t), drawing)
	require.NoError(t, err)

	assert.Equal(t, &store.Drawing{
		Title: "Plan",
		Shapes: []store.Shape{
			&store.Alpha{Side: 2},
			&store.Alpha{Side: 3},
			&store.Bravo{Width: 2, Height: 3, Label: "box"},
			&store.Charlie{Bravo: store.Bravo{Width: 1, Height: 2}, Depth: 3},
		},
		Note: &markup.Node{Name: markup.Name("memo"), Children: []*markup.Node{markup.TextNode("keep")}},
	}, v)
}

func TestPolymorphicErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code diagnostic.Code
	}{
		{"no type marker", `<shape width="1" height="1"/>`, diagnostic.CodeUnknownVariant},
		{"marker outside candidates", `<shape xsi:type="d:drawing"/>`, diagnostic.CodeUnknownVariant},
		{"second wildcard element", `<memo/><memo/>`, diagnostic.CodeTooManyOccurrences},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := `<d:drawing xmlns:d="urn:example:store" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
				tt.body + `</d:drawing>`

			_, err := decode(t, newBinder(t), doc)
			requireCode(t, err, tt.code)
		})
	}
}

func TestLeniency(t *testing.T) {
	tests := []struct {
		name string
		body string
		flag options.LeniencyEnum
		code diagnostic.Code
	}{
		{
			"unknown attribute",
			`<shipTo zone="5"><name>Ann</name><city>Oslo</city></shipTo>`,
			options.LenientUnknownAttributes,
			diagnostic.CodeUnexpectedAttribute,
		},
		{
			"attribute on a simple value",
			`<shipTo><name>Ann</name><city lang="no">Oslo</city></shipTo>`,
			options.LenientUnknownAttributes,
			diagnostic.CodeUnexpectedAttribute,
		},
		{
			"unknown element",
			`<shipTo><name>Ann</name><floor><n>3</n></floor><city>Oslo</city></shipTo>`,
			options.LenientUnknownElements,
			diagnostic.CodeUnexpectedElement,
		},
		{
			"element inside a simple value",
			`<shipTo><name>Ann<b>!</b></name><city>Oslo</city></shipTo>`,
			options.LenientUnknownElements,
			diagnostic.CodeUnexpectedElement,
		},
		{
			"text in element-only content",
			`<shipTo>care of<name>Ann</name><city>Oslo</city></shipTo>`,
			options.LenientText,
			diagnostic.CodeUnexpectedText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeOrder(t, newBinder(t), tt.body+item+card)
			requireCode(t, err, tt.code)

			_, err = decodeOrder(t, newBinder(t, options.WithLeniency(options.LeniencyAll&^tt.flag)), tt.body+item+card)
			requireCode(t, err, tt.code)

			b := newBinder(t, options.WithLeniency(tt.flag))

			po, err := decodeOrder(t, b, tt.body+item+card)
			require.NoError(t, err)
			assert.Equal(t, "Ann", po.ShipTo.Name)
			assert.Equal(t, "Oslo", po.ShipTo.City)

			warnings := b.Diagnostics().Warnings
			require.Len(t, warnings, 1, spew.Sdump(warnings))
			assert.Equal(t, tt.code, warnings[0].Code)
			assert.Equal(t, "store.USAddress", warnings[0].Type)
		})
	}
}

func TestOrder(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"out of order", `<pair><second>b</second><first>a</first></pair>`},
		{"split group", `<pair><first>a</first><note>n</note><second>b</second></pair>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decode(t, newBinder(t), tt.doc)
			requireCode(t, err, diagnostic.CodeUnexpectedElement)

			v, err := decode(t, newBinder(t, options.WithEnforceOrder(false)), tt.doc)
			require.NoError(t, err)
			assert.Equal(t, "a", v.(*pair).First)
			assert.Equal(t, "b", v.(*pair).Second)
		})
	}

	v, err := decode(t, newBinder(t), `<pair><note>n</note><first>a</first><second>b</second></pair>`)
	require.NoError(t, err)
	assert.Equal(t, &pair{First: "a", Second: "b", Note: "n"}, v)
}

func TestMixed(t *testing.T) {
	v, err := decode(t, newBinder(t),
		`<s:p xmlns:s="urn:example:store" xml:lang="en">Hello <em>big</em> world, see <a href="/x">here</a>.</s:p>`)
	require.NoError(t, err)

	p := v.(*store.Paragraph)
	link := &store.Link{Href: "/x", Text: "here"}

	assert.Equal(t, "en", p.Lang)
	assert.Equal(t, []string{"big"}, p.Emphasis)
	assert.Equal(t, []store.Link{*link}, p.Links)
	assert.Equal(t, markup.Mixed{
		{Text: "Hello "},
		{Name: markup.Name("em"), Value: "big"},
		{Text: " world, see "},
		{Name: markup.Name("a"), Value: link},
		{Text: "."},
	}, p.Content)
	assert.Equal(t, "Hello  world, see .", p.Content.Text())
}

func TestExpect(t *testing.T) {
	b := newBinder(t)
	b.Expect(reflect.TypeFor[*store.Address]())

	v, err := decode(t, b, `<addr country="NO"><name>Ann</name><city>Oslo</city></addr>`)
	require.NoError(t, err)
	assert.Equal(t, &store.Address{Name: "Ann", City: "Oslo", Country: "NO"}, v)

	b = newBinder(t)
	b.Expect(reflect.TypeFor[store.Bravo]())

	_, err = decode(t, b, `<d:charlie xmlns:d="urn:example:store" width="1" height="1"/>`)
	requireCode(t, err, diagnostic.CodeUnknownVariant)
}

func TestFeed(t *testing.T) {
	b := newBinder(t)

	require.NoError(t, b.Feed(markup.StartTag(store.BravoName,
		markup.Attr{Name: markup.Name("width"), Value: "2"},
		markup.Attr{Name: markup.Name("height"), Value: "3"},
	)))

	_, err := b.Result()
	require.Error(t, err)
	assert.False(t, b.Done())

	require.NoError(t, b.Feed(markup.EndTag()))
	require.NoError(t, b.Feed(markup.EndDocument()))
	assert.True(t, b.Done())

	v, err := b.Result()
	require.NoError(t, err)
	assert.Equal(t, &store.Bravo{Width: 2, Height: 3}, v)

	err = b.Feed(markup.Text("late"))
	requireCode(t, err, diagnostic.CodeMalformedDocument)
	assert.Equal(t, err, b.Feed(markup.EndDocument()), "errors are sticky")

	_, resultErr := b.Result()
	assert.Equal(t, err, resultErr)
}

func TestMalformed(t *testing.T) {
	bravo := markup.StartTag(store.BravoName,
		markup.Attr{Name: markup.Name("width"), Value: "2"},
		markup.Attr{Name: markup.Name("height"), Value: "3"},
	)

	tests := []struct {
		name   string
		events []markup.Event
		code   diagnostic.Code
	}{
		{"no root", nil, diagnostic.CodeMalformedDocument},
		{"unclosed root", []markup.Event{bravo}, diagnostic.CodeMalformedDocument},
		{"second root", []markup.Event{bravo, markup.EndTag(), bravo}, diagnostic.CodeMalformedDocument},
		{"stray end tag", []markup.Event{markup.EndTag()}, diagnostic.CodeMalformedDocument},
		{"invalid event", []markup.Event{{}}, diagnostic.CodeMalformedDocument},
		{"unknown root", []markup.Event{markup.StartTag(markup.Name("circle"))}, diagnostic.CodeUnknownVariant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newBinder(t).Decode(markup.NewEventSource(tt.events...))
			requireCode(t, err, tt.code)
		})
	}
}

func TestUnknownNameHints(t *testing.T) {
	b := newBinder(t)

	_, err := decode(t, b, `<pair><frst>a</frst></pair>`)
	d := requireCode(t, err, diagnostic.CodeUnexpectedElement)
	assert.Contains(t, d.Error(), "did you mean first?")

	_, err = decodeOrder(t, newBinder(t), shipTo+`<item SKU="a"><productName>Pen</productName><quantity>2</quantity></item>`)
	d = requireCode(t, err, diagnostic.CodeUnexpectedAttribute)
	assert.Contains(t, d.Error(), "did you mean sku?")

	_, err = decode(t, newBinder(t), `<pair><colour>red</colour></pair>`)
	d = requireCode(t, err, diagnostic.CodeUnexpectedElement)
	assert.NotContains(t, d.Error(), "did you mean")
}

func TestMixedChoice(t *testing.T) {
	doc := `<remark>x <b>1</b> y <i>2</i> z</remark>`

	tests := []struct {
		name   string
		policy options.DuplicateChoicePolicy
		want   *remark
	}{
		{"last wins", options.DuplicateLastWins, &remark{
			Content: markup.Mixed{{Text: "x  y "}, {Name: markup.Name("i"), Value: "2"}, {Text: " z"}},
			Italic:  "2",
		}},
		{"first wins", options.DuplicateFirstWins, &remark{
			Content: markup.Mixed{{Text: "x "}, {Name: markup.Name("b"), Value: "1"}, {Text: " y  z"}},
			Bold:    "1",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := decode(t, newBinder(t, options.WithDuplicateChoice(tt.policy)), doc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v, spew.Sdump(v))
		})
	}
}
