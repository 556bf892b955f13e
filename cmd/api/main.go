package main

import (
	"log"

	"notesim/cmd"
	"notesim/internal"
)

func main() {
	config, err := internal.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	apiHandler, err := cmd.InitializeDependencies()
	if err != nil {
		log.Fatal(err)
	}
	err = apiHandler.StartApi(config.Port)
	if err != nil {
		log.Fatal(err)
	}
}
