// Package web provides the embedded upload page.
package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/labstack/echo/v4"
)

//go:embed static/*
var staticFiles embed.FS

// GetFileSystem returns the embedded filesystem with the static folder as root.
func GetFileSystem() (fs.FS, error) {
	return fs.Sub(staticFiles, "static")
}

// RegisterStaticRoutes serves the upload page at / and its assets under
// /static. API routes are registered separately.
func RegisterStaticRoutes(e *echo.Echo) error {
	staticFS, err := GetFileSystem()
	if err != nil {
		return err
	}

	index, err := fs.ReadFile(staticFS, "index.html")
	if err != nil {
		return err
	}

	e.GET("/", func(c echo.Context) error {
		return c.HTMLBlob(http.StatusOK, index)
	})
	e.StaticFS("/static", staticFS)

	return nil
}
