package main

import (
	"context"
	"os"
	"time"

	"petcare/pkg/config"

	"github.com/spf13/cobra"
)

const JobName = "petcare-seed"

var cfg *config.Config

func main() {
	root := &cobra.Command{
		Use:           "seed",
		Short:         "Load demo data into the PetCare database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cfg = config.Load(JobName)
			cfg.SetMongo()
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			cfg.GracefulShutdown()
		},
	}

	root.AddCommand(
		usersCmd(),
		vetsCmd(),
		servicesCmd(),
		productsCmd(),
		ownersCmd(),
		allCmd(),
	)

	if err := root.Execute(); err != nil {
		if cfg != nil {
			cfg.Log.Error("Seeding failed", "error", err)
			cfg.GracefulShutdown()
		}
		os.Exit(1)
	}
}

func withTimeout(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 2*time.Minute)
}

func allCmd() *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "all",
		Short: "Seed users, veterinarians, services, products and random owners",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()

			steps := []func(context.Context) error{
				seedUsers,
				seedVets,
				seedServices,
				seedProducts,
				func(ctx context.Context) error { return seedOwners(ctx, count) },
			}
			for _, step := range steps {
				if err := step(ctx); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "owners", 10, "number of random owners to create")
	return cmd
}
