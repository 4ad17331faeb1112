package main

import "github.com/autostack/stackd/cmd/root"

func main() {
	root.Execute()
}
