package main

import "github.com/zrbsprite/cell/cmd/cell/cmd"

func main() {
	cmd.Execute()
}
