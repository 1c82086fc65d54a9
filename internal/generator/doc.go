// Package generator turns a validated configuration into the documentation
// tree: it renders the docs templates, writes the site configuration and
// copies static assets.
//
// Every GenerateDocs call rebuilds the output directory from scratch, so two
// runs over identical inputs produce identical trees.
package generator
