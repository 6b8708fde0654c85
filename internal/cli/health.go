package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"alfredoptarigan/resume-analyzer/internal/client"
	applogger "alfredoptarigan/resume-analyzer/internal/logger"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the analyzer API health",
	Run: func(_ *cobra.Command, _ []string) {
		health()
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func health() {
	logger, err := applogger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	api := client.New(config.Server, config.Timeout, logger)

	status, err := api.Health(context.Background())
	if err != nil {
		if client.IsConnectionRefused(err) {
			logger.Fatal(fmt.Sprintf("cannot connect to the analyzer server at %s; is it running?", config.Server),
				zap.Error(err))
		}
		logger.Fatal("checking health", zap.Error(err), zap.String("server", config.Server))
	}

	fmt.Println(status.Message)
	if !status.GeminiConfigured {
		fmt.Println("warning: GEMINI_API_KEY is not configured on the server; analyze requests will fail")
	}
}
