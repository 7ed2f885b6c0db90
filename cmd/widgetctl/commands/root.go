package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

var (
	// Version is set at build time via ldflags.
	Version = "dev"

	verbose  bool
	mongoURI string
	database string

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "widgetctl",
	Short: "Inspect and render last-week metric widgets",
	Long: `widgetctl renders stored dashboard widgets to stdout and checks widget
settings strings, for operators and template authors.

Connection settings come from flags, then STRATAMETRICS_MONGO_URI and
STRATAMETRICS_MONGO_DATABASE (a .env file in the working directory is
loaded first).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is fine; the environment may already be set.
		_ = godotenv.Load()

		if mongoURI == "" {
			mongoURI = envOr("STRATAMETRICS_MONGO_URI", "mongodb://localhost:27017")
		}
		if database == "" {
			database = envOr("STRATAMETRICS_MONGO_DATABASE", "strata_metrics")
		}

		var err error
		if verbose {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		logger.Debug("widgetctl starting", zap.String("version", Version))
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	defer func() { _ = logger.Sync() }()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&mongoURI, "mongo-uri", "", "MongoDB connection URI")
	rootCmd.PersistentFlags().StringVar(&database, "database", "", "MongoDB database name")

	rootCmd.AddCommand(newRenderCmd(), newSaveCmd(), newParseEntityCmd(), newParseMetricsCmd())
}

// connect opens the database named by the flags. The returned func
// disconnects the client.
func connect(ctx context.Context) (*mongo.Database, func(), error) {
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(mongoURI).
		SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}
	logger.Debug("connected to MongoDB", zap.String("database", database))

	return client.Database(database), func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Warn("mongo disconnect failed", zap.Error(err))
		}
	}, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
