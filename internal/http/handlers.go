package http

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

type languagePayload struct {
	interfaces.Language
	Dir string `json:"dir"`
}

type postSummary struct {
	Slug     string                  `json:"slug"`
	Metadata interfaces.PostMetadata `json:"metadata"`
}

type listPayload struct {
	Language string        `json:"language"`
	Dir      string        `json:"dir"`
	Tag      string        `json:"tag,omitempty"`
	Series   string        `json:"series,omitempty"`
	Tags     []string      `json:"tags,omitempty"`
	Posts    []postSummary `json:"posts"`
}

type postPayload struct {
	Language string           `json:"language"`
	Dir      string           `json:"dir"`
	Post     *interfaces.Post `json:"post"`
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleLanguages(c *fiber.Ctx) error {
	langs := s.registry.Languages()
	out := make([]languagePayload, len(langs))
	for i, lang := range langs {
		out[i] = languagePayload{Language: lang, Dir: s.registry.Direction(lang.Code)}
	}
	return c.JSON(fiber.Map{"default": s.registry.Default().Code, "languages": out})
}

func (s *Server) handleThemeCSS(c *fiber.Ctx) error {
	css, err := s.themeCSS()
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderCacheControl, "public, max-age=3600")
	c.Type("css", "utf-8")
	return c.SendString(css)
}

func (s *Server) handleIndex(c *fiber.Ctx) error {
	return c.Redirect(joinPath(s.basePath, s.registry.Default().Code), fiber.StatusFound)
}

func (s *Server) handleList(c *fiber.Ctx) error {
	lang, ok := s.listingLanguage(c)
	if !ok {
		return nil
	}
	list, err := s.store.ListPublished(c.UserContext(), lang)
	if err != nil {
		return err
	}
	payload := s.listPayload(lang, list)
	payload.Tags = posts.Tags(list)
	return c.JSON(payload)
}

func (s *Server) handleTag(c *fiber.Ctx) error {
	lang, ok := s.listingLanguage(c)
	if !ok {
		return nil
	}
	tag := c.Params("tag")
	list, err := s.store.ListByTag(c.UserContext(), lang, tag)
	if err != nil {
		return err
	}
	payload := s.listPayload(lang, list)
	payload.Tag = tag
	return c.JSON(payload)
}

func (s *Server) handleSeries(c *fiber.Ctx) error {
	lang, ok := s.listingLanguage(c)
	if !ok {
		return nil
	}
	series := c.Params("series")
	list, err := s.store.ListSeries(c.UserContext(), lang, series)
	if err != nil {
		return err
	}
	payload := s.listPayload(lang, list)
	payload.Series = series
	return c.JSON(payload)
}

// handlePost serves the default language in place when :lang is unknown.
func (s *Server) handlePost(c *fiber.Ctx) error {
	lang := s.registry.Resolve(c.Params("lang"))
	slug := c.Params("slug")

	post, found, err := s.store.GetPost(c.UserContext(), slug, lang)
	if err != nil {
		return err
	}
	if !found {
		return posts.NotFound(slug, lang)
	}
	return c.JSON(postPayload{
		Language: post.Metadata.Language,
		Dir:      s.registry.Direction(post.Metadata.Language),
		Post:     post,
	})
}

// listingLanguage returns the requested language, or redirects to the same
// listing under the default language and reports false.
func (s *Server) listingLanguage(c *fiber.Ctx) (string, bool) {
	lang := c.Params("lang")
	if s.registry.IsValid(lang) {
		return lang, true
	}
	target := joinPath(s.basePath, s.registry.Default().Code)
	if tag := c.Params("tag"); tag != "" {
		target = joinPath(target, "tags/"+url.PathEscape(tag))
	}
	if series := c.Params("series"); series != "" {
		target = joinPath(target, "series/"+url.PathEscape(series))
	}
	_ = c.Redirect(target, fiber.StatusFound)
	return "", false
}

func (s *Server) listPayload(lang string, list []*interfaces.Post) listPayload {
	out := make([]postSummary, len(list))
	for i, post := range list {
		out[i] = postSummary{Slug: post.Slug, Metadata: post.Metadata}
	}
	return listPayload{
		Language: lang,
		Dir:      s.registry.Direction(lang),
		Posts:    out,
	}
}

