package main

import "github.com/fableforge/fableforge/internal/server"

func main() {
	s := server.New()
	s.RegisterRoutes()
	s.Start()
}
