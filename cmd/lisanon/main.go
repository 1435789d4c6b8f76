package main

import (
	"os"

	"github.com/cgeisenberger/lisanon/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
