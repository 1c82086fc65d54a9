// Package build provides the generation pipeline for labdocs.
//
// All execution paths (generate command, watch mode, tests) route through
// BuildService. A run is strictly sequential:
//
//	load → validate → lint → generate docs → site config → static assets
//
// Validation failures stop the run before anything is written.
package build
