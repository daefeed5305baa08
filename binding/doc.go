// Package binding ties the registry, dispatcher, binder and emitter together
// behind one Engine.
//
//	reg := model.New()
//	reg.MustRegister(model.Spec[Order](markup.NS("urn:shop", "order")))
//
//	engine, err := binding.New(reg, options.WithDuplicateChoice(options.DuplicateReject))
//	order, err := binding.Unmarshal[Order](engine, data)
//	out, err := engine.Marshal(order)
//
// Marshal and Encode buffer the whole document, so callers never receive a
// partial document when a record fails its checks halfway through.
package binding
