package dashboard

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const flashCookie = "rollout_flash"

// flash is a one-shot message shown on the next page render.
type flash struct {
	Kind    string // "success" or "error"
	Message string
}

func setFlash(c *gin.Context, kind, msg string) {
	c.SetCookie(flashCookie, kind+"|"+msg, 60, "/", "", false, true)
}

// popFlash reads and clears the pending flash, if any.
func popFlash(c *gin.Context) *flash {
	v, err := c.Cookie(flashCookie)
	if err != nil || v == "" {
		return nil
	}
	c.SetCookie(flashCookie, "", -1, "/", "", false, true)
	kind, msg, ok := strings.Cut(v, "|")
	if !ok {
		return &flash{Kind: "success", Message: v}
	}
	return &flash{Kind: kind, Message: msg}
}
