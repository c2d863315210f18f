package main

import (
	"delegatecomp/cmd"
	"log"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	apiHandler, err := cmd.InitializeDependencies()
	if err != nil {
		log.Fatal(err)
	}
	err = apiHandler.StartApi(3009)
	if err != nil {
		log.Fatal(err)
	}
}
