// Package markdown turns post source files into HTML. It splits front matter
// from the body and runs the body through an ordered pipeline of tree
// stages: parse, HTML tree, optional sanitize, highlight, serialize.
package markdown
