// This binary provides an HTTP service that compares pairs of VCF files.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/googlegenomics/vcfdiff/analytics"
	"github.com/googlegenomics/vcfdiff/vcfdiff-server/job"
)

var (
	port = flag.Int("port", 8080, "HTTP service port")

	// Enable or disable anonymous usage tracking.
	//
	// If enabled, anonymous information about requests handled by the server is
	// logged to Google via Google Analytics.
	//
	// This information helps Google determine how well the software is
	// performing and where improvements should be made.  No user identifying
	// information is ever sent to Google.
	trackUsage = flag.Bool("track_usage", false, "anonymous usage tracking")
)

func main() {
	flag.Parse()
	router := gin.Default()

	store := job.NewStore(job.NewRunner())

	if *trackUsage {
		log.Printf("Enabling anonymous usage tracking")

		client := analytics.NewClient("UA-114688342-1", uuid.New().String())
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

	if err := router.Run(fmt.Sprintf(":%d", *port)); err != nil {
		log.Fatalf("HTTP server returned an error: %v", err)
	}
}
