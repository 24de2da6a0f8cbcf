package main

import "github.com/devshield/devshield/cmd/devshield"

func main() {
	devshield.Execute()
}
