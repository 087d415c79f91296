package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/hrygo/akasha/internal/profile"
	"github.com/hrygo/akasha/server"
	"github.com/hrygo/akasha/store"
	"github.com/hrygo/akasha/store/db"
)

const greetingBanner = `
▄▀█ █▄▀ ▄▀█ █▀ █░█ ▄▀█
█▀█ █░█ █▀█ ▄█ █▀█ █▀█
`

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "akasha",
	Short: "A local semantic memory and conversation service",
	Run: func(_ *cobra.Command, _ []string) {
		instanceProfile := &profile.Profile{
			Mode:    viper.GetString("mode"),
			Addr:    viper.GetString("addr"),
			Port:    viper.GetInt("port"),
			Data:    viper.GetString("data"),
			Driver:  viper.GetString("driver"),
			DSN:     viper.GetString("dsn"),
			Version: version,
		}
		instanceProfile.FromEnv()
		if err := instanceProfile.Validate(); err != nil {
			slog.Error("invalid configuration", "error", err)
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		dbDriver, err := db.NewDBDriver(instanceProfile)
		if err != nil {
			slog.Error("failed to create db driver", "error", err)
			os.Exit(1)
		}

		storeInstance := store.New(dbDriver, instanceProfile)
		if err := storeInstance.Migrate(ctx); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}

		s, err := server.NewServer(ctx, instanceProfile, storeInstance)
		if err != nil {
			slog.Error("failed to create server", "error", err)
			os.Exit(1)
		}

		fmt.Printf("%s v%s, mode %q, address %s:%d, driver %s\n",
			greetingBanner, version, instanceProfile.Mode, instanceProfile.Addr, instanceProfile.Port, instanceProfile.Driver)

		g, gCtx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return s.Start(gCtx)
		})
		g.Go(func() error {
			<-gCtx.Done()
			s.Shutdown(context.Background())
			return nil
		})
		if err := g.Wait(); err != nil && gCtx.Err() == nil {
			slog.Error("server stopped unexpectedly", "error", err)
			os.Exit(1)
		}
	},
}

func init() {
	viper.SetDefault("mode", "demo")
	viper.SetDefault("addr", "")
	viper.SetDefault("port", 8081)
	viper.SetDefault("data", ".")
	viper.SetDefault("driver", "sqlite")

	rootCmd.PersistentFlags().String("mode", "demo", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8081, "port of server")
	rootCmd.PersistentFlags().String("data", ".", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", "database driver")
	rootCmd.PersistentFlags().String("dsn", "", "database source name (aka. DSN)")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}

	viper.SetEnvPrefix("akasha")
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
}
