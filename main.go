package main

import "github.com/tablehost/restaurantapi/cmd"

func main() {
	cmd.Execute()
}
