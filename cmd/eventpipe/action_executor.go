package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/creatorhq/eventpipe/channel"
	"github.com/creatorhq/eventpipe/gateway"
	"github.com/creatorhq/eventpipe/worker"
)

var actionExecutorCmd = &cobra.Command{
	Use:   "action-executor",
	Short: "Consume planned actions and execute them through their channels",
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

		// Provider gateways are stubbed here. The production adapters are
		// built and injected by the deployment that owns the provider
		// credentials; the channel semantics are identical either way.
		registry := channel.NewRegistry(channel.Deps{
			Mail:           &gateway.FakeMail{},
			Chat:           &gateway.FakeChat{},
			Calls:          &gateway.FakeCalls{},
			Products:       gateway.NewFakeProducts(),
			Producer:       rt.producer,
			PaymentBaseURL: rt.cfg.PaymentBaseURL,
			Metrics:        rt.metrics,
			Log:            rt.log,
		})

		w, err := worker.NewActionExecutor(rt.js, registry, rt.producer, rt.metrics, rt.log)
		if err != nil {
			return err
		}

		w.Run(ctx)
		return nil
	},
}
