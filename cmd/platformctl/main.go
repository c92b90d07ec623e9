// Command platformctl is the operator CLI for the entitlements store.
//
// Usage:
//
//	platformctl migrate
//	platformctl sweep-keys --older-than=720h
//	platformctl usage show|reset|history <user-id>
//	platformctl subscription show|upgrade|cancel <user-id> [tier]
//	platformctl role set <email> <role>
//	platformctl audit tail --limit=20
//
// Configuration is read the same way as the server (CONFIG_PATH + ENV).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCommand(openSession)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "platformctl: %v\n", err)
		os.Exit(1)
	}
}
