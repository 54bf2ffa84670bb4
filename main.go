package main

import (
	"os"

	"github.com/ai-scholar/scholar-admin/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
