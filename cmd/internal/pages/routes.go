// Package pages serves the storefront and admin page entry points.
//
// Routing is an explicit table built at startup. Every page resolves the
// caller's session from the request headers and renders either the signed-in
// view or the "please sign in" view, with the page's loading skeleton.
package pages

// Route binds a URL pattern to a page.
type Route struct {
	// Pattern is an exact ServeMux path.
	Pattern string
	// Name selects the placeholder layout and identifies the page in logs.
	Name  string
	Title string
	// Admin marks pages of the admin panel. Authorization is not enforced
	// here.
	Admin bool
	// ShowSession renders the resolved session's details.
	ShowSession bool
}

// DefaultRoutes is the storefront's page table.
func DefaultRoutes() []Route {
	return []Route{
		{Pattern: "/account", Name: "account", Title: "Your account"},
		{Pattern: "/account/orders", Name: "orders", Title: "Your orders"},
		{Pattern: "/categories", Name: "categories", Title: "Categories"},
		{Pattern: "/admin/coupons/new", Name: "coupon-new", Title: "New coupon", Admin: true},
		{Pattern: "/admin/sessions", Name: "sessions", Title: "Sessions", Admin: true, ShowSession: true},
	}
}
