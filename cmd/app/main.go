package main

import (
	"github.com/moviematch/core/internal/app"
	"github.com/moviematch/core/internal/config"
)

func main() {
	app.Go(config.Load())
}
