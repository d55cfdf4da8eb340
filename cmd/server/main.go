package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gridplanner/internal/buildinfo"
	"github.com/dmitrijs2005/gridplanner/internal/server"
	"github.com/dmitrijs2005/gridplanner/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration:\n%v\n", err)
		os.Exit(2)
	}

	ctx := context.Background()
	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	app.Run(ctx)

}
