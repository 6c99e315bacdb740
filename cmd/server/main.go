package main

import (
	"context"
	"log"
	"os"

	"github.com/inkwell-app/inkwell/internal/buildinfo"
	server "github.com/inkwell-app/inkwell/internal/server"
	"github.com/inkwell-app/inkwell/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := server.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)
}
