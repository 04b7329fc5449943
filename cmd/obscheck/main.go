package main

import (
	"log"

	tool "github.com/squadup/admin-api/internal/tools/obscheck"
)

func main() {
	if err := tool.NewRootCommand().Execute(); err != nil {
		log.Fatal(err)
	}
}
