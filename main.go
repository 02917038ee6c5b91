package main

import (
	"github.com/RankoXXX/exidvpn-server/cmd"
)

func main() {
	cmd.Execute()
}
