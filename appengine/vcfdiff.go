package vcfdiff

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"google.golang.org/appengine"

	"github.com/googlegenomics/vcfdiff/analytics"
	"github.com/googlegenomics/vcfdiff/vcfdiff-server/job"
)

func init() {
	router := gin.Default()
	router.Use(appEngineContext)

	store := job.NewStore(job.NewRunner())
	if property := os.Getenv("ANALYTICS_PROPERTY_ID"); property != "" {
		client := analytics.NewClient(property, uuid.New().String())
		send := func(hits []analytics.Hit) {
			if err := client.Send(hits); err != nil {
				log.Printf("Failed to send %d hits to analytics: %v", len(hits), err)
			}
		}
		router.Use(analytics.Middleware(send))
		store.ReportTo(func(hit analytics.Hit) { send([]analytics.Hit{hit}) })
	}

	router.POST("/comparisons", job.NewSubmitHandler(store))
	router.GET("/comparisons/:id", job.NewGetHandler(store))
	router.GET("/comparisons", job.NewListHandler(store))

	http.HandleFunc("/", router.ServeHTTP)
}

func appEngineContext(c *gin.Context) {
	c.Request = c.Request.WithContext(appengine.NewContext(c.Request))
	c.Next()
}
