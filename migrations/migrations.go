// Package migrations embeds the SQL schema of each repository backend.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed sqlite/*.sql postgres/*.sql
var files embed.FS

func SQLite() fs.FS {
	return mustSub("sqlite")
}

func Postgres() fs.FS {
	return mustSub("postgres")
}

func mustSub(dir string) fs.FS {
	sub, err := fs.Sub(files, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
