// Command api serves a local stand-in of the gradebook REST API.
package main

import (
	"context"
	"fmt"
	"log"

	dig_container "github.com/bobur6/professor-ai-helper/apps/api/di/dig"
	echoapi "github.com/bobur6/professor-ai-helper/apps/api/echo"
	"github.com/bobur6/professor-ai-helper/core"
)

func main() {
	c := dig_container.New()

	must(c.Invoke(func(conf *core.Config, apiLogger core.Logger, server *echoapi.Server) {
		apiLogger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
		defer apiLogger.Info("Application stopped")

		go server.Start()

		select {
		case err := <-server.Errors():
			apiLogger.Fatal(fmt.Sprintf("server error: %v", err), err)

		case sig := <-server.ShutdownSignal():
			apiLogger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

			// give outstanding requests a deadline for completion
			ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				apiLogger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

				if err = server.Close(); err != nil {
					apiLogger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
				}
			}
		}
	}))
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
