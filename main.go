package main

import (
	"log"

	"github.com/boypt/addtorrent/server"
	"github.com/jpillora/opts"
)

var VERSION = "0.0.0-src" //set with ldflags

func main() {
	s := server.Server{
		Title:      "AddTorrent",
		Port:       3000,
		ConfigPath: "addtorrent.yaml",
	}

	opts.New(&s).
		Version(VERSION).
		PkgRepo().
		SetLineWidth(96).
		Parse()

	if err := s.Run(VERSION); err != nil {
		log.Fatal(err)
	}
}
