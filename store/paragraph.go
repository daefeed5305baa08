package store

import "markup-binder/markup"

// Paragraph is mixed content: text runs interleaved with emphasis and links.
type Paragraph struct {
	Lang     string       `bind:"attribute,name=lang,ns=http://www.w3.org/XML/1998/namespace"`
	Content  markup.Mixed `bind:"text"`
	Emphasis []string     `bind:"element,name=em"`
	Links    []Link       `bind:"element,name=a"`
}

// Link is an anchor with simple content.
type Link struct {
	Href string `bind:"attribute,name=href,required"`
	Text string `bind:"text"`
}
