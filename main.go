package main

import "github.com/krobus00/order-intake-service/cmd"

func main() {
	cmd.Execute()
}
