// Command skillbridge serves the training catalog and the OTP-confirmed
// registration payment API, and consumes the notification queue.
package main

import (
	"context"
	"time"

	"github.com/shandysiswandi/skillbridge/internal/app"
)

const shutdownTimeout = 10 * time.Second

func main() {
	application := app.New()
	<-application.Start()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	application.Stop(ctx)
}
