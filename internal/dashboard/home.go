package dashboard

import (
	"net/http"

	"github.com/ativarub/rollout/internal/report"
	"github.com/gin-gonic/gin"
)

// handleIndex renders the reporting dashboard for the division_id and
// group_id filters.
func (s *server) handleIndex(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		abortHTML(c, err)
		return
	}
	d, err := report.Build(s.db, f)
	if err != nil {
		abortHTML(c, err)
		return
	}
	render(c, http.StatusOK, "index.html", gin.H{
		"Title":     "Dashboard",
		"Dashboard": d,
	})
}
