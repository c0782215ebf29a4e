package main

import "github.com/Alturino/framedarchive/cmd"

func main() {
	cmd.Start()
}
