package main

import (
	"github.com/mapgrid/lakeproc/pkg/api/http/server"
)

const (
	docApi = `Run the API server`
)

type optsAPI struct {
	optsService

	Addr string `long:"addr" env:"ADDR" description:"Address to bind to" default:"localhost:8100"`
}

func (c *optsAPI) Execute(args []string) error {
	// This serves the job API over HTTP. It runs no job compute itself;
	// that's the worker command. It does run the background completer,
	// so dismissals it accepts always reach the durable store.
	svc, signer, _, err := buildService(&c.optsService, false)
	if err != nil {
		return err
	}
	defer svc.Close()

	s := server.NewServer(c.Addr, signer, c.Debug)
	return s.ServeForever(svc)
}
