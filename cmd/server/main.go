// Command server runs the photo-sharing web app.
//
//	server                          # same as "server serve"
//	server serve --port 8080
//	server migrate --db data/photos.db
//	server --config photo-share.yaml serve
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
