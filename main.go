package main

import (
	"project-checkin-system/cmd/server"
)

func main() {
	server.Init()
	server.Run()
}
