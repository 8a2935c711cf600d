package middleware

import "github.com/m1z23r/drift/pkg/drift"

// NoStore marks every response as uncacheable so clients always see the
// current collection.
func NoStore() drift.HandlerFunc {
	return func(c *drift.Context) {
		h := c.Response.Header()
		h.Set("Cache-Control", "no-store, no-cache, must-revalidate")
		h.Set("Pragma", "no-cache")
		h.Set("Expires", "0")

		c.Next()
	}
}
