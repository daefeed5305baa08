// Package descriptor defines the per-field binding contract of bound types.
//
// A Descriptor ties one Go struct field to its markup identity: the role it
// plays (element, attribute, wildcard, attribute wildcard or simple-content
// text), its qualified name, occurrence bounds, nil and choice semantics and
// token encoding. Descriptor tables are either written out explicitly by the
// producer of the bound types, or parsed once from `bind` struct tags:
//
//	type Item struct {
//		SKU   string   `bind:"attribute,name=sku,required"`
//		Tags  []string `bind:"element,name=tags,tokens"`
//		Notes []string `bind:"element,name=note,max=unbounded,group=1"`
//	}
package descriptor
