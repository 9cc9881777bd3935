// Command lessongraph runs planner, worker and critic agents over teaching tasks.
//
//	lessongraph run "Design a 45-minute lesson on Ohm's law" --export markdown,json
//	lessongraph chat
//	lessongraph memory -n 5
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
