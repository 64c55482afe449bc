package delivery

import (
	"fmt"
	"strings"
)

// Route names used for redirects.
const (
	RouteHome          = "home"
	RouteProducts      = "products"
	RouteProductDetail = "product_detail"
	RouteAddProduct    = "add_product"
	RouteEditProduct   = "edit_product"
	RouteDeleteProduct = "delete_product"
	RouteCategories    = "categories"
	RouteCategory      = "category_detail"
)

var routePatterns = map[string]string{
	RouteHome:          "/",
	RouteProducts:      "/products/",
	RouteProductDetail: "/products/:id/",
	RouteAddProduct:    "/products/add/",
	RouteEditProduct:   "/products/edit/:id/",
	RouteDeleteProduct: "/products/delete/:id/",
	RouteCategories:    "/categories/",
	RouteCategory:      "/categories/:id/",
}

// Pattern returns the router pattern registered for a route name.
func Pattern(name string) string {
	pattern, ok := routePatterns[name]
	if !ok {
		panic(fmt.Sprintf("delivery: unknown route %q", name))
	}
	return pattern
}

// Reverse builds the path of a named route, filling its parameters in order.
func Reverse(name string, args ...interface{}) string {
	segments := strings.Split(Pattern(name), "/")
	next := 0
	for i, segment := range segments {
		if !strings.HasPrefix(segment, ":") {
			continue
		}
		if next >= len(args) {
			panic(fmt.Sprintf("delivery: route %q needs more than %d arguments", name, len(args)))
		}
		segments[i] = fmt.Sprint(args[next])
		next++
	}
	if next != len(args) {
		panic(fmt.Sprintf("delivery: route %q takes %d arguments, got %d", name, next, len(args)))
	}
	return strings.Join(segments, "/")
}
