package main

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/creatorhq/eventpipe/broker"
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Create or update the canonical topics on the broker",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := rt.provision(ctx); err != nil {
			return err
		}

		names := make([]string, 0, len(broker.Topics))
		for name := range broker.Topics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			tc := broker.Topics[name]
			rt.log.Info("topic ready",
				slog.String("topic", tc.Name),
				slog.Int("partitions", tc.Partitions),
				slog.Duration("retention", tc.Retention))
		}
		return nil
	},
}
