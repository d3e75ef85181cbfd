package main

import (
	"os"

	"github.com/mapgrid/lakeproc/pkg/database"
)

const (
	docMigrate = `Apply pending database migrations`
)

type optsMigrate struct {
	optsGeneral
	optsDatabase
}

func (c *optsMigrate) Execute(args []string) error {
	// $VAR references in the URL are expanded here the same way the
	// database layer does on connect.
	return database.Migrate(os.Expand(c.DatabaseURL, os.Getenv))
}
