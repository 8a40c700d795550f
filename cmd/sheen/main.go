package main

import (
	"fmt"
	"os"

	"github.com/syntria/sheen/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
