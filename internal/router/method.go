package router

import (
	"strings"

	"github.com/vyrodovalexey/avaroute/internal/util"
)

// Method is an HTTP method recognised by the router.
type Method uint8

// Supported methods. The zero value is not a valid method.
const (
	MethodGet Method = iota + 1
	MethodPost
	MethodPut
	MethodDelete
	MethodPatch
	MethodHead
	MethodOptions
)

var methodNames = [...]string{
	MethodGet:     "GET",
	MethodPost:    "POST",
	MethodPut:     "PUT",
	MethodDelete:  "DELETE",
	MethodPatch:   "PATCH",
	MethodHead:    "HEAD",
	MethodOptions: "OPTIONS",
}

// allMethods lists supported methods in their canonical order.
var allMethods = []Method{
	MethodGet, MethodPost, MethodPut, MethodDelete,
	MethodPatch, MethodHead, MethodOptions,
}

// String returns the canonical upper-case name.
func (m Method) String() string {
	if !m.Valid() {
		return "UNKNOWN"
	}
	return methodNames[m]
}

// Valid reports whether m is one of the supported methods.
func (m Method) Valid() bool {
	return m >= MethodGet && m <= MethodOptions
}

// ParseMethod converts a method name into a Method. Matching is
// case-insensitive and ignores surrounding whitespace.
func ParseMethod(s string) (Method, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for _, m := range allMethods {
		if methodNames[m] == name {
			return m, nil
		}
	}
	return 0, util.NewUnsupportedMethodError(s, SupportedMethods())
}

// SupportedMethods returns the names of all supported methods in
// canonical order. The returned slice is owned by the caller.
func SupportedMethods() []string {
	names := make([]string, len(allMethods))
	for i, m := range allMethods {
		names[i] = m.String()
	}
	return names
}
