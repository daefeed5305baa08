package store

import (
	"time"

	"markup-binder/descriptor"
	"markup-binder/markup"
)

// OrderStatus is an enumeration checked by the codec in both directions.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPaid      OrderStatus = "PAID"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// PurchaseOrder is the root of an order document.
type PurchaseOrder struct {
	ID        string      `bind:"attribute,name=id,required"`
	OrderedAt time.Time   `bind:"attribute,name=orderDate"`
	Status    OrderStatus `bind:"element,name=status,default=PENDING"`
	ShipTo    USAddress   `bind:"element,name=shipTo,required"`
	BillTo    *Address    `bind:"element,name=billTo"`
	// Comment distinguishes an omitted comment from an explicit nil one.
	Comment descriptor.Nillable[string] `bind:"element,name=comment,nillable"`
	Items   []Item                      `bind:"element,name=item,min=1"`
	Tags    []string                    `bind:"element,name=tags,tokens"`

	// Payment is a choice: a card number or an invoice reference.
	CardNumber string `bind:"element,name=card,group=1,choice,required"`
	InvoiceRef string `bind:"element,name=invoice,group=1,choice"`

	Extensions []*markup.Node          `bind:"wildcard"`
	Extra      map[markup.QName]string `bind:"attributes"`
}

// Address is a postal address.
type Address struct {
	Name    string `bind:"element,name=name,required"`
	Street  string `bind:"element,name=street"`
	City    string `bind:"element,name=city,required"`
	Country string `bind:"attribute,name=country"`
}

// USAddress extends Address with state and zip code.
type USAddress struct {
	Address

	State string `bind:"element,name=state"`
	Zip   string `bind:"element,name=zip"`
}

// Item is one order line. Prices are kept in cents.
type Item struct {
	SKU        string  `bind:"attribute,name=sku,required"`
	Name       string  `bind:"element,name=productName,required"`
	Quantity   int     `bind:"element,name=quantity,required"`
	PriceCents int64   `bind:"element,name=priceCents"`
	Note       *string `bind:"element,name=note"`
	// Backorder entries may be nil to mark a slot that could not be filled.
	Backorder []*string `bind:"element,name=backorder,nillable"`
}

// TotalCents sums the line prices.
func (o *PurchaseOrder) TotalCents() int64 {
	var total int64
	for _, it := range o.Items {
		total += it.PriceCents * int64(it.Quantity)
	}

	return total
}
