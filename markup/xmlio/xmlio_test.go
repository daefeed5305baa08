package xmlio_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"markup-binder/markup"
	"markup-binder/markup/xmlio"
)

func readAll(t *testing.T, doc string) []markup.Event {
	t.Helper()

	r, err := xmlio.NewReader(strings.NewReader(doc))
	require.NoError(t, err)

	var out []markup.Event

	for {
		ev, err := r.Next()
		if err == io.EOF {
			return out
		}

		require.NoError(t, err)

		ev.Line, ev.Column = 0, 0
		out = append(out, ev)
	}
}

func TestReader(t *testing.T) {
	doc := `<?xml version="1.0"?>
<!-- comment -->
<p:root xmlns:p="urn:p" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" a="1" p:b="2">` +
		`<child xsi:type="p:Special">text</child>` +
		`<other xmlns="urn:d" xsi:type="Plain"/>` +
		`</p:root>`

	events := readAll(t, doc)

	assert.Equal(t, []markup.Event{
		markup.StartTag(markup.NS("urn:p", "root"),
			markup.Attr{Name: markup.Name("a"), Value: "1"},
			markup.Attr{Name: markup.NS("urn:p", "b"), Value: "2"},
		),
		markup.StartTag(markup.Name("child"), markup.Attr{Name: markup.XSIType, Value: "{urn:p}Special"}),
		markup.Text("text"),
		markup.EndTag(),
		markup.StartTag(markup.NS("urn:d", "other"), markup.Attr{Name: markup.XSIType, Value: "{urn:d}Plain"}),
		markup.EndTag(),
		markup.EndTag(),
		markup.EndDocument(),
	}, events)
}

func TestReaderPositions(t *testing.T) {
	r, err := xmlio.NewReader(strings.NewReader("<a>\n  <b/>\n</a>"))
	require.NoError(t, err)

	ev, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, 1, ev.Line)

	_, err = r.Next() // whitespace
	require.NoError(t, err)

	ev, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, markup.Name("b"), ev.Name)
	assert.Equal(t, 2, ev.Line)
}

func TestReaderErrors(t *testing.T) {
	_, err := xmlio.NewReader(nil)
	require.Error(t, err)

	tests := []struct {
		name string
		doc  string
	}{
		{"unclosed", "<a><b></b>"},
		{"mismatched", "<a></b>"},
		{"undeclared type prefix", `<a xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:type="q:T"/>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := xmlio.NewReader(strings.NewReader(tt.doc))
			require.NoError(t, err)

			for {
				_, err = r.Next()
				if err != nil {
					break
				}
			}

			require.Error(t, err)
			assert.NotErrorIs(t, err, io.EOF)
		})
	}
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer

	w, err := xmlio.NewWriter(&buf)
	require.NoError(t, err)

	require.NoError(t, w.OpenElement(markup.NS("urn:a", "root")))
	require.NoError(t, w.WriteAttribute(markup.Name("id"), `a"<b`))
	require.NoError(t, w.WriteAttribute(markup.NS("urn:ext", "flag"), "1"))
	require.NoError(t, w.OpenElement(markup.NS("urn:a", "child")))
	require.NoError(t, w.WriteText("x < y & z"))
	require.NoError(t, w.CloseElement())
	require.NoError(t, w.WriteNil(markup.Name("gone")))
	require.NoError(t, w.OpenElement(markup.NS("urn:a", "typed")))
	require.NoError(t, w.WriteAttribute(markup.XSIType, "{urn:types}Special"))
	require.NoError(t, w.CloseElement())
	require.NoError(t, w.CloseElement())
	require.NoError(t, w.Flush())

	assert.Equal(t, `<root xmlns="urn:a" xmlns:ns1="urn:ext" id="a&#34;&lt;b" ns1:flag="1">`+
		`<child>x &lt; y &amp; z</child>`+
		`<gone xmlns="" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:nil="true"/>`+
		`<typed xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xmlns:ns2="urn:types" xsi:type="ns2:Special"/>`+
		`</root>`, buf.String())

	require.Error(t, w.CloseElement())
	require.Error(t, w.WriteAttribute(markup.Name("late"), ""))
}

func TestWriterTypeInDefaultNamespace(t *testing.T) {
	var buf bytes.Buffer

	w, err := xmlio.NewWriter(&buf)
	require.NoError(t, err)

	require.NoError(t, w.OpenElement(markup.NS("urn:a", "shape")))
	require.NoError(t, w.WriteAttribute(markup.XSIType, "{urn:a}charlie"))
	require.NoError(t, w.CloseElement())
	require.NoError(t, w.Flush())

	assert.Equal(t, `<shape xmlns="urn:a" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:type="charlie"/>`, buf.String())

	events := readAll(t, buf.String())
	v, ok := events[0].Attr(markup.XSIType)
	require.True(t, ok)
	assert.Equal(t, "{urn:a}charlie", v)
}

func TestWriterReaderRoundTrip(t *testing.T) {
	doc := `<r xmlns="urn:r" xmlns:ns1="urn:x" ns1:k="v"><a>1</a><b xmlns=""><c>t</c></b></r>`

	events := readAll(t, doc)

	var buf bytes.Buffer

	w, err := xmlio.NewWriter(&buf)
	require.NoError(t, err)

	b := markup.NewNodeBuilder(events[0])
	for _, ev := range events[1 : len(events)-1] {
		_, err := b.Feed(ev)
		require.NoError(t, err)
	}

	require.NoError(t, b.Node().Emit(w))
	require.NoError(t, w.Flush())

	assert.Equal(t, doc, buf.String())
}
