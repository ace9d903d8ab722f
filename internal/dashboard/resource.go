package dashboard

import (
	"github.com/gin-gonic/gin"
)

// resource binds one entity's operations to its HTML and JSON routes.
// The core calls return JSON-ready views; HTML handlers reuse them and
// render their own page models.
type resource struct {
	path     string // URL segment, e.g. "stores"
	singular string
	plural   string

	list   func(s *server, c *gin.Context) (any, error)
	get    func(s *server, id uint) (any, error)
	create func(s *server, in input) (id uint, body any, err error) // id 0 when several rows were created
	update func(s *server, id uint, in input) (any, error)
	remove func(s *server, id uint) error

	table  func(s *server, c *gin.Context) (*table, error)
	fields func(s *server, id uint) ([]formField, error) // zero id: blank form
	detail func(s *server, id uint) (*detail, error)
}

// resources returns every entity in navigation order.
func resources() []*resource {
	return []*resource{
		divisionResource(),
		storeResource(),
		workGroupResource(),
		responsibleResource(),
		activityResource(),
		planResource(),
		checkpointResource(),
	}
}
