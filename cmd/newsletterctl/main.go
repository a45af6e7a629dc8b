package main

import (
	"os"
)

func main() {
	if err := NewRootCmd(loadApp).Execute(); err != nil {
		os.Exit(1)
	}
}
