// Command welltube builds well trajectory scenes from scripts: it exports
// meshes, paints the tube texture, and serves the scene to a browser.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
