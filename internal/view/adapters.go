package view

import (
	"context"
	"io"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"maragu.dev/gomponents"
)

// --- GOMPONENTS -> TEMPL ADAPTER ---

// GomponentToTemplAdapter wraps a gomponents.Node to satisfy the
// templ.Component interface so gomponents content renders inside templ
// pipelines.
type GomponentToTemplAdapter struct {
	Node gomponents.Node
}

// Render implements the templ.Component interface.
func (a *GomponentToTemplAdapter) Render(ctx context.Context, w io.Writer) error {
	return a.Node.Render(w)
}

// AdaptGomponentToTempl converts a gomponents Node into a templ.Component.
func AdaptGomponentToTempl(node gomponents.Node) templ.Component {
	return &GomponentToTemplAdapter{Node: node}
}

// --- TEMPL -> GOMPONENTS ADAPTER ---

// TemplToGomponentAdapter wraps a templ.Component to satisfy the
// gomponents.Node interface.
type TemplToGomponentAdapter struct {
	Component templ.Component
}

// Render implements the gomponents.Node interface. Gomponents' Render does
// not carry a context, so the templ side receives context.Background().
func (a *TemplToGomponentAdapter) Render(w io.Writer) error {
	return a.Component.Render(context.Background(), w)
}

// AdaptTemplToGomponent converts a templ Component into a gomponents Node.
func AdaptTemplToGomponent(component templ.Component) gomponents.Node {
	return &TemplToGomponentAdapter{Component: component}
}

// RenderPage writes a gomponents page through the templ pipeline with the
// request's context, setting the HTML content type.
func RenderPage(c echo.Context, status int, node gomponents.Node) error {
	c.Response().Header().Set(echo.HeaderContentType, "text/html; charset=utf-8")
	c.Response().WriteHeader(status)
	component := AdaptGomponentToTempl(node)
	return component.Render(c.Request().Context(), c.Response().Writer)
}

// RenderPartial writes a gomponents fragment (an htmx swap target) without a
// surrounding layout.
func RenderPartial(c echo.Context, node gomponents.Node) error {
	return RenderPage(c, http.StatusOK, node)
}
