package main

import "equipment-lending-system/cmd/server"

func main() {
	server.Init()
	server.Run()
}
