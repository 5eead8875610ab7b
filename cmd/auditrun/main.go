package main

import (
	"log"

	"github.com/jaffee/commandeer"
	"github.com/nycaudit/caudit/pipeline"
)

func main() {
	if err := commandeer.Run(pipeline.NewMain()); err != nil {
		log.Fatal(err)
	}
}
