package main

import "github.com/schemasmith/schemasmith/cmd"

func main() {
	cmd.Execute()
}
