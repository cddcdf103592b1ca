// Package router resolves an HTTP method and request path to a handler,
// the parameters extracted from the path, and the pattern that matched.
//
// Patterns are slash-separated segments. A segment is static text, a
// named parameter "{id}" matching exactly one non-empty segment, or a
// trailing wildcard "{*rest}" matching zero or more remaining segments.
// Overlapping patterns resolve with static over parameter over wildcard
// precedence, backtracking when a more specific branch fails deeper in
// the path:
//
//	r := router.New[http.Handler](router.WithLogger(logger))
//	if err := r.AddRoute("GET", "/users/{id}", usersHandler); err != nil {
//	    return err
//	}
//
//	match, err := r.Match("GET", "/users/42")
//	switch {
//	case errors.Is(err, util.ErrUnsupportedMethod):
//	    // 501
//	case errors.Is(err, util.ErrNotFound):
//	    // 404
//	}
//	// match.Params["id"] == "42", match.Pattern == "/users/{id}"
//
// The router only resolves; invoking the handler is the caller's job.
// Table is safe for concurrent registration and lookup.
package router
