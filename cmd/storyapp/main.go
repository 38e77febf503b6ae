package main

import (
	"context"
	"log"
	"os"

	"github.com/kopislukatan/storyapp/internal/buildinfo"
	"github.com/kopislukatan/storyapp/internal/cli"
	"github.com/kopislukatan/storyapp/internal/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(ctx, cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
