package store

import (
	"reflect"

	"markup-binder/codec"
	"markup-binder/descriptor"
	"markup-binder/markup"
	"markup-binder/model"
)

// Namespace is the namespace of the store's named types.
const Namespace = "urn:example:store"

// Names of the registered types.
var (
	PurchaseOrderName = markup.NS(Namespace, "purchaseOrder")
	DrawingName       = markup.NS(Namespace, "drawing")
	AlphaName         = markup.NS(Namespace, "alpha")
	BravoName         = markup.NS(Namespace, "bravo")
	CharlieName       = markup.NS(Namespace, "charlie")
	ParagraphName     = markup.NS(Namespace, "p")
	// SquareName is a substitution name for Alpha.
	SquareName = markup.NS(Namespace, "square")
)

// Codec returns the scalar codec the store types need.
func Codec() codec.Codec {
	return codec.New(codec.WithEnum(StatusPending, StatusPaid, StatusShipped, StatusCancelled))
}

// Specs returns the registrations of the store types.
func Specs() []model.TypeSpec {
	return []model.TypeSpec{
		model.Spec[PurchaseOrder](PurchaseOrderName),
		model.Spec[Alpha](AlphaName).SubstitutedBy(SquareName),
		model.Spec[Bravo](BravoName),
		model.Spec[Charlie](CharlieName).Extends(reflect.TypeFor[Bravo]()),
		model.Spec[Drawing](DrawingName).WithFields(
			descriptor.Descriptor{Field: "Title", Role: descriptor.RoleAttribute, Name: "title"},
			descriptor.Descriptor{
				Field:      "Shapes",
				Role:       descriptor.RoleElement,
				Name:       "shape",
				Occurs:     descriptor.Many,
				Candidates: []reflect.Type{reflect.TypeFor[Alpha](), reflect.TypeFor[Bravo]()},
			},
			descriptor.Descriptor{Field: "Note", Role: descriptor.RoleWildcard},
		),
		model.Spec[Paragraph](ParagraphName).AsMixed(),
	}
}

// Register installs the store types into r.
func Register(r *model.Registry) error {
	return r.Register(Specs()...)
}

// NewRegistry returns a registry holding the store types.
func NewRegistry() (*model.Registry, error) {
	r := model.New(model.WithCodec(Codec()))
	if err := Register(r); err != nil {
		return nil, err
	}

	return r, nil
}
