package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/creatorhq/eventpipe/worker"
)

var batchConsumerCmd = &cobra.Command{
	Use:   "batch-consumer",
	Short: "Consume analytics, scheduled-task and audit topics in batches",
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

		w, err := worker.NewBatchConsumer(rt.js, rt.producer, rt.store, rt.metrics, rt.log)
		if err != nil {
			return err
		}

		w.Run(ctx)
		return nil
	},
}
