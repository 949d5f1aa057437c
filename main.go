package main

import (
	"q3map/cmd"
)

func main() {
	cmd.Execute()
}
