package main

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gen-data-go/config"
	"gen-data-go/db"
	"gen-data-go/generator"
	"gen-data-go/handlers"
	"gen-data-go/metrics"
)

func rootCmd() *cobra.Command {
	v := config.New()
	var cfgFile string
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "gen-data",
		Short:         "Generate a synthetic student/score workbook",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(v, cfgFile)
			if err != nil {
				return err
			}
			return setupLogging(cfg.LogLevel)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cfg)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "optional YAML configuration file")
	flags.String("output", "", "output workbook path")
	flags.Int("count", 0, "number of students to generate")
	flags.Uint64("seed", 0, "random seed, 0 seeds from entropy")
	bindFlags(v, root)

	root.AddCommand(seedCmd(&cfg), serveCmd(&cfg))
	return root
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) {
	for _, name := range []string{"output", "count", "seed"} {
		_ = v.BindPFlag(name, cmd.PersistentFlags().Lookup(name))
	}
}

func setupLogging(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return nil
}

func generate(cfg *config.Config) (*generator.Dataset, error) {
	ds, err := generator.Generate(generator.NewRand(cfg.Seed), cfg.GeneratorOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to generate dataset: %w", err)
	}
	return ds, nil
}

func runGenerate(cfg *config.Config) error {
	ds, err := generate(cfg)
	if err != nil {
		return err
	}
	sheets := ds.Sheets()

	reg := prometheus.NewRegistry()
	metrics.Register(reg)

	start := time.Now()
	if err := db.SaveWorkbook(cfg.Output, sheets); err != nil {
		return err
	}
	metrics.ObserveWrite(start)
	metrics.ObserveSheets(sheets)

	rows, writeSeconds, err := metrics.Summary(reg)
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"output":        cfg.Output,
		"rows":          rows,
		"write_seconds": writeSeconds,
	}).Infof("Wrote %d students and %d scores", len(ds.Students), len(ds.Scores))
	return nil
}

func seedCmd(cfg **config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Generate a dataset and load it into Redis",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := *cfg
			client, err := db.InitializeRedisClient(c.Redis.Addr, c.Redis.Password, c.Redis.DB)
			if err != nil {
				return err
			}
			defer client.Close()

			ds, err := generate(c)
			if err != nil {
				return err
			}
			return db.NewRedisService(client).SeedDataset(ds)
		},
	}
}

func serveCmd(cfg **config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve dataset downloads and the Redis-backed class API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := *cfg
			client, err := db.InitializeRedisClient(c.Redis.Addr, c.Redis.Password, c.Redis.DB)
			if err != nil {
				return err
			}
			defer client.Close()

			metrics.Register(prometheus.DefaultRegisterer)

			apiHandler := handlers.NewAPIHandler(db.NewRedisService(client), c.GeneratorOptions())
			router := handlers.NewRouter(apiHandler)

			port := ":" + c.Port
			logrus.Infof("Starting server on port %s", port)
			if err := router.Run(port); err != nil {
				return fmt.Errorf("failed to run server: %w", err)
			}
			return nil
		},
	}
}
