package main

import "github.com/encodeous/quadrant/cmd"

func main() {
	cmd.Execute()
}
