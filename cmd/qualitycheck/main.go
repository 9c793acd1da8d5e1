// Command qualitycheck reconciles a Complot CSV export against a GIS layer
// workbook and writes the comparison report.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/qualitycheck/internal/core"
)

func main() {
	// .env is optional; values already in the environment win
	_ = godotenv.Load()

	a := &app{}
	err := newRootCmd(a).Execute()
	// PersistentPostRun does not run when a command fails
	a.close()
	if err != nil {
		if core.IsUserFacing(err) {
			fmt.Fprintln(os.Stderr, core.FormatUserError(err))
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
