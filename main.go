package main

import (
	"log"

	"github.com/drjulio/clinic-api/app"
)

func main() {
	if err := app.SetupAndRunServer(); err != nil {
		log.Fatal(err)
	}
}
