package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/creatorhq/eventpipe/api"
	"github.com/creatorhq/eventpipe/worker"
)

var agentProcessorCmd = &cobra.Command{
	Use:   "agent-processor",
	Short: "Consume consumer events and trigger agent decisions",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := rt.provision(ctx); err != nil {
			return err
		}

		// The decision layer is deployed as its own service; this binary
		// runs the streaming side with a no-op orchestrator until one is
		// injected through a sidecar build.
		w, err := worker.NewAgentProcessor(rt.js, api.NoopOrchestrator{}, rt.producer, rt.metrics, rt.log)
		if err != nil {
			return err
		}

		w.Run(ctx)
		return nil
	},
}
