package api

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// SPAHandler 为未匹配的路由提供前端构建产物：存在的文件直接返回，
// 其余返回 index.html 交给前端路由。未匹配的 /api 路径返回 JSON 404。
func SPAHandler(staticDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if p == "/api" || strings.HasPrefix(p, "/api/") {
			NotFound(c, "not found")
			return
		}
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			NotFound(c, "not found")
			return
		}

		clean := path.Clean("/" + p)
		if clean != "/" {
			full := filepath.Join(staticDir, filepath.FromSlash(clean))
			if info, err := os.Stat(full); err == nil && !info.IsDir() {
				c.File(full)
				return
			}
		}

		index := filepath.Join(staticDir, "index.html")
		if _, err := os.Stat(index); err != nil {
			NotFound(c, "not found")
			return
		}
		c.File(index)
	}
}
