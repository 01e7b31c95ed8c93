// Package component provides renderable elements and the registry that
// creates them by identifier.
//
// The routing engine only needs three capabilities from a UI layer: check
// whether a component identifier is registered, instantiate it, and set the
// route props on the new element. Registry provides these, plus Load, which
// runs a lazy import hook at most once at a time per identifier.
//
//	reg := component.NewRegistry()
//	reg.Register("home-page", component.Template("home-page", "<h1>Home</h1>"))
//
//	el, err := reg.Instantiate("home-page")
//	el.SetAttr("id", "42")
//	fmt.Println(el.HTML()) // <home-page id="42"><h1>Home</h1></home-page>
package component
