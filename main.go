package main

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

func main() {
	c := newCLI(viper.New(), os.Stdout)
	err := c.root().Execute()
	c.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
