// Package web bundles the page templates and browser assets into the binary.
package web

import "embed"

// Templates holds layouts, partials and pages.
//
//go:embed templates/**/*.html
var Templates embed.FS

// Static holds the stylesheet and browser script served under /static/.
//
//go:embed static/**/*
var Static embed.FS
