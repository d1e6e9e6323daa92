package main

import (
	"github.com/axellelanca/clickfix/cmd"
	_ "github.com/axellelanca/clickfix/cmd/cli"
	_ "github.com/axellelanca/clickfix/cmd/server"
)

func main() {
	cmd.Execute()
}
