// Package web provides the embedded templates and static assets for the landing page.
package web

import "embed"

// StaticFiles holds the stylesheet and the client-capable pass script.
//
//go:embed static
var StaticFiles embed.FS

// Templates holds the HTML templates rendered by pkg/page.
//
//go:embed templates
var Templates embed.FS
