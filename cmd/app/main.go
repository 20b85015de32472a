package main

import (
	"github.com/HoceineEl/madrasa-messaging/internal/app"
	"go.uber.org/fx"
)

func main() {
	fx.New(app.CreateApp()).Run()
}
