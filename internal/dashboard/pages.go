package dashboard

import (
	"fmt"
	"log"
	"net/http"

	"github.com/ativarub/rollout/internal/rollout"
	"github.com/gin-gonic/gin"
)

// table is a rendered entity listing; each row links to base/ID.
type table struct {
	Base    string
	Columns []string
	Rows    []tableRow
}

type tableRow struct {
	ID    uint
	Cells []string
}

// formField describes one input. Type is an HTML input type, or "select"
// or "textarea".
type formField struct {
	Name     string
	Label    string
	Type     string
	Value    string
	Required bool
	Multiple bool
	Options  []choice
	Help     string
}

type choice struct {
	Value    string
	Label    string
	Selected bool
}

// detail is the show page body: label/value pairs and related listings.
type detail struct {
	Title   string
	Pairs   []pair
	Related []related
}

type pair struct {
	Label string
	Value string
	Link  string
}

type related struct {
	Title string
	Table *table
}

// navItem is a top navigation entry.
type navItem struct {
	Path  string
	Label string
}

func navItems() []navItem {
	items := []navItem{{Path: "/", Label: "Dashboard"}}
	for _, r := range resources() {
		items = append(items, navItem{Path: "/" + r.path, Label: r.plural})
	}
	return items
}

// render adds the shared layout data and writes the template.
func render(c *gin.Context, code int, name string, data gin.H) {
	data["Flash"] = popFlash(c)
	data["Nav"] = navItems()
	data["Path"] = c.Request.URL.Path
	c.HTML(code, name, data)
}

// failRedirect flashes err and redirects to target.
func failRedirect(c *gin.Context, err error, target string) {
	if statusFor(err) == http.StatusInternalServerError {
		log.Printf("dashboard: %s %s [%s]: %v", c.Request.Method, c.Request.URL.Path, c.GetString(requestIDKey), err)
	}
	setFlash(c, "error", rollout.Message(err))
	c.Redirect(http.StatusSeeOther, target)
}

func (s *server) htmlList(r *resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := r.table(s, c)
		if err != nil {
			abortHTML(c, err)
			return
		}
		render(c, http.StatusOK, "list.html", gin.H{
			"Title": r.plural,
			"Base":  "/" + r.path,
			"Table": t,
		})
	}
}

func (s *server) htmlNew(r *resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		fields, err := r.fields(s, 0)
		if err != nil {
			abortHTML(c, err)
			return
		}
		render(c, http.StatusOK, "form.html", gin.H{
			"Title":  "New " + r.singular,
			"Action": "/" + r.path,
			"Cancel": "/" + r.path,
			"Fields": fields,
		})
	}
}

func (s *server) htmlCreate(r *resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		in, err := bindForm(c)
		if err != nil {
			failRedirect(c, err, "/"+r.path+"/new")
			return
		}
		id, _, err := r.create(s, in)
		if err != nil {
			failRedirect(c, err, "/"+r.path+"/new")
			return
		}
		setFlash(c, "success", r.singular+" created")
		if id == 0 {
			c.Redirect(http.StatusSeeOther, "/"+r.path)
			return
		}
		c.Redirect(http.StatusSeeOther, fmt.Sprintf("/%s/%d", r.path, id))
	}
}

func (s *server) htmlShow(r *resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c)
		if err != nil {
			abortHTML(c, err)
			return
		}
		d, err := r.detail(s, id)
		if err != nil {
			abortHTML(c, err)
			return
		}
		render(c, http.StatusOK, "show.html", gin.H{
			"Title":  d.Title,
			"Base":   "/" + r.path,
			"Plural": r.plural,
			"ID":     id,
			"Detail": d,
		})
	}
}

func (s *server) htmlEdit(r *resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c)
		if err != nil {
			abortHTML(c, err)
			return
		}
		fields, err := r.fields(s, id)
		if err != nil {
			abortHTML(c, err)
			return
		}
		render(c, http.StatusOK, "form.html", gin.H{
			"Title":  fmt.Sprintf("Edit %s #%d", r.singular, id),
			"Action": fmt.Sprintf("/%s/%d", r.path, id),
			"Cancel": fmt.Sprintf("/%s/%d", r.path, id),
			"Fields": fields,
		})
	}
}

func (s *server) htmlUpdate(r *resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c)
		if err != nil {
			abortHTML(c, err)
			return
		}
		self := fmt.Sprintf("/%s/%d", r.path, id)
		in, err := bindForm(c)
		if err != nil {
			failRedirect(c, err, self+"/edit")
			return
		}
		if _, err := r.update(s, id, in); err != nil {
			failRedirect(c, err, self+"/edit")
			return
		}
		setFlash(c, "success", r.singular+" updated")
		c.Redirect(http.StatusSeeOther, self)
	}
}

func (s *server) htmlDelete(r *resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c)
		if err != nil {
			abortHTML(c, err)
			return
		}
		if err := r.remove(s, id); err != nil {
			failRedirect(c, err, fmt.Sprintf("/%s/%d", r.path, id))
			return
		}
		setFlash(c, "success", r.singular+" deleted")
		c.Redirect(http.StatusSeeOther, "/"+r.path)
	}
}
