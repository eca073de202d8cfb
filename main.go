// wifiprobe - connection listing and Wi-Fi credential auditing for
// networks you own or are authorised to test.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"wifiprobe/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "wifiprobe: %v\n", err)
		os.Exit(1)
	}
}
