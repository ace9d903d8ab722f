package dashboard

import (
	"net/http"

	"github.com/ativarub/rollout/internal/report"
	"github.com/ativarub/rollout/internal/rollout"
	"github.com/gin-gonic/gin"
)

func (s *server) apiList(r *resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := r.list(s, c)
		if err != nil {
			abortJSON(c, err)
			return
		}
		c.JSON(http.StatusOK, body)
	}
}

func (s *server) apiGet(r *resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c)
		if err != nil {
			abortJSON(c, err)
			return
		}
		body, err := r.get(s, id)
		if err != nil {
			abortJSON(c, err)
			return
		}
		c.JSON(http.StatusOK, body)
	}
}

func (s *server) apiCreate(r *resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		in, err := bindJSON(c)
		if err != nil {
			abortJSON(c, err)
			return
		}
		_, body, err := r.create(s, in)
		if err != nil {
			abortJSON(c, err)
			return
		}
		c.JSON(http.StatusCreated, body)
	}
}

// apiUpdate serves both PUT and PATCH; either way only supplied fields change.
func (s *server) apiUpdate(r *resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c)
		if err != nil {
			abortJSON(c, err)
			return
		}
		in, err := bindJSON(c)
		if err != nil {
			abortJSON(c, err)
			return
		}
		body, err := r.update(s, id, in)
		if err != nil {
			abortJSON(c, err)
			return
		}
		c.JSON(http.StatusOK, body)
	}
}

func (s *server) apiDelete(r *resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c)
		if err != nil {
			abortJSON(c, err)
			return
		}
		if err := r.remove(s, id); err != nil {
			abortJSON(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (s *server) apiDashboard(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		abortJSON(c, err)
		return
	}
	d, err := report.Build(s.db, f)
	if err != nil {
		abortJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *server) apiPlannedVsExecuted(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		abortJSON(c, err)
		return
	}
	rows, err := report.PlannedVsExecuted(s.db, f)
	if err != nil {
		abortJSON(c, err)
		return
	}
	if rows == nil {
		rows = []report.ComparisonRow{}
	}
	c.JSON(http.StatusOK, rows)
}

func (s *server) apiResponsibleGroups(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		abortJSON(c, err)
		return
	}
	groups, err := rollout.ResponsibleGroups(s.db, id)
	if err != nil {
		abortJSON(c, err)
		return
	}
	totals, err := rollout.WorkGroupTotals(s.db)
	if err != nil {
		abortJSON(c, err)
		return
	}
	out := make([]workGroupView, 0, len(groups))
	for _, g := range groups {
		out = append(out, newWorkGroupView(g, totals[g.ID]))
	}
	c.JSON(http.StatusOK, out)
}
