package main

import (
	"go.uber.org/fx"

	"github.com/launderly/launderly/internal/app"
)

func main() {
	fx.New(app.Module).Run()
}
