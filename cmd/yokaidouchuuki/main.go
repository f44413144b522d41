package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// rootCtx is set by Execute before the command tree runs, and read by run
// so a SIGINT/SIGTERM cancels an in-flight search rather than killing the
// process mid-write.
var rootCtx context.Context

func cmdContext() context.Context {
	if rootCtx == nil {
		return context.Background()
	}
	return rootCtx
}

// Execute builds and runs the command tree, translating a returned error
// into the nonzero exit code §7 requires for configuration, resource, and
// internal-invariant failures. Cache I/O errors are recovered internally by
// package search and never reach here.
func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	rootCtx = ctx

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
