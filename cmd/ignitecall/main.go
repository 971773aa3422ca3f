// Command ignitecall はIgnite CallのAPIサーバー、クリーンアップワーカー、
// マイグレーションを起動する。
//
//	ignitecall [serve|worker|migrate [down]|healthcheck]
package main

import (
	"fmt"
	"os"

	"github.com/hitoshi/ignitecall/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "ignitecall: %v\n", err)
		os.Exit(1)
	}
}
