package controllers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"milk-backend/utils"

	"github.com/gin-gonic/gin"
)

// SPA serves files from dir and falls back to index.html for client-side
// routes. Unknown /api paths get a JSON 404.
func SPA(dir string) gin.HandlerFunc {
	index := filepath.Join(dir, "index.html")
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/") || path == "/api" {
			utils.RespondWithError(c, http.StatusNotFound, "Nie znaleziono")
			return
		}
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			utils.RespondWithError(c, http.StatusNotFound, "Nie znaleziono")
			return
		}

		file := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+path)))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			c.File(file)
			return
		}
		if _, err := os.Stat(index); err != nil {
			utils.RespondWithError(c, http.StatusNotFound, "Nie znaleziono")
			return
		}
		c.File(index)
	}
}
