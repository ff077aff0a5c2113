// Package http serves posts and languages as JSON over fiber.
//
// Routes, relative to the configured base path (/blog by default):
//   - GET /blog                       redirect to the default language listing
//   - GET /blog/:lang                 public posts, newest first
//   - GET /blog/:lang/:slug           one post
//   - GET /blog/:lang/tags/:tag       public posts carrying a tag
//   - GET /blog/:lang/series/:series  public posts of a series in reading order
//
// and at the root:
//   - GET /api/languages
//   - GET /assets/highlight.css
//   - GET /healthz
//
// An unknown language on a listing route redirects to the default language.
// The post route serves the default language in place.
package http
