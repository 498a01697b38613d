package main

import (
	"github.com/thereayou/campuslink/cmd/server"
)

func main() {
	s := server.NewServer()
	s.Run()
}
