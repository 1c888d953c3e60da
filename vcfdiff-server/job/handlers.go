package job

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/googlegenomics/vcfdiff/analytics"
)

//NewSubmitHandler builds a gin handler that queues comparison jobs
func NewSubmitHandler(store *Store) func(c *gin.Context) {
	return func(c *gin.Context) {
		track := analytics.TrackerFromContext(c.Request.Context())
		track(analytics.Event("Comparisons", "Comparison Request Received", "", nil))

		var req Request
		if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
			track(analytics.Event("Comparisons", "Comparison Request Rejected", "", nil))
			c.String(400, "Error parsing request: %v", err)
			return
		}
		if err := req.Validate(); err != nil {
			track(analytics.Event("Comparisons", "Comparison Request Rejected", "", nil))
			c.String(400, "Error validating request: %v", err)
			return
		}

		job := store.Submit(req)
		track(analytics.Event("Comparisons", "Comparison Accepted", "", nil))

		writeJSON(c, 202, job)
	}
}

//NewGetHandler builds a gin handler that reports one comparison job
func NewGetHandler(store *Store) func(c *gin.Context) {
	return func(c *gin.Context) {
		job, ok := store.Get(c.Param("id"))
		if !ok {
			c.String(404, "Error finding comparison %q", c.Param("id"))
			return
		}
		writeJSON(c, 200, job)
	}
}

//NewListHandler builds a gin handler that lists all comparison jobs
func NewListHandler(store *Store) func(c *gin.Context) {
	return func(c *gin.Context) {
		writeJSON(c, 200, store.List())
	}
}

func writeJSON(c *gin.Context, status int, value interface{}) {
	enc := json.NewEncoder(c.Writer)
	enc.SetEscapeHTML(false)
	c.Header("Content-Type", "application/json")
	c.Status(status)
	if err := enc.Encode(value); err != nil {
		c.String(500, "Error generating result")
	}
}
