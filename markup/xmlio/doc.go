// Package xmlio adapts XML text to the markup event model.
//
// Reader turns an io.Reader into markup events with namespace prefixes already
// resolved, dropping comments, processing instructions and namespace
// declarations. The value of an xsi:type attribute is a name itself; Reader
// resolves its prefix too and reports it in Clark notation ("{ns}local").
//
// Writer implements markup.Writer on top of an io.Writer and manages namespace
// declarations itself: element namespaces become default namespace
// declarations, attribute namespaces get generated prefixes ("xsi" for the
// schema-instance namespace). An xsi:type value given in Clark notation is
// written back as a prefixed name.
package xmlio
