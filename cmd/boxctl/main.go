// Command boxctl inspects and maintains the registry offline, against the
// store configured through the usual environment variables.
package main

import (
	"log"
	"os"
)

func main() {
	if err := newCLI().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
