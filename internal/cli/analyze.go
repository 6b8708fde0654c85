package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"alfredoptarigan/resume-analyzer/internal/client"
	applogger "alfredoptarigan/resume-analyzer/internal/logger"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <resume-file>",
	Short: "Upload a resume and score it against a job description",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		analyze(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("job-description", "D", "", "job description text")
	analyzeCmd.Flags().String("job-description-file", "", "file holding the job description")
	analyzeCmd.Flags().Bool("raw", false, "print the raw JSON payload instead of the report")
}

func analyze(cmd *cobra.Command, resumePath string) {
	logger, err := applogger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	jobDescription, err := resolveJobDescription(cmd)
	if err != nil {
		logger.Fatal("resolving the job description", zap.Error(err))
	}

	logger.Debug("starting the analysis",
		zap.String("version", version),
		zap.String("server", config.Server),
		zap.String("resume", resumePath),
	)

	api := client.New(config.Server, config.Timeout, logger)

	result, err := api.Analyze(context.Background(), resumePath, jobDescription)
	if err != nil {
		if client.IsTimeout(err) {
			logger.Fatal("analysis timed out; the model call can take a while, consider a larger --timeout",
				zap.Error(err))
		}
		if client.IsConnectionRefused(err) {
			logger.Fatal(fmt.Sprintf("cannot connect to the analyzer server at %s; is it running?", config.Server),
				zap.Error(err))
		}
		logger.Fatal("analyzing the resume", zap.Error(err))
	}

	if raw, _ := cmd.Flags().GetBool("raw"); raw {
		fmt.Println(string(result.Raw))
		return
	}

	renderResult(os.Stdout, result)
}

// resolveJobDescription takes the text from the flag, then from the file
// flag, and finally asks interactively.
func resolveJobDescription(cmd *cobra.Command) (string, error) {
	if text, _ := cmd.Flags().GetString("job-description"); strings.TrimSpace(text) != "" {
		return text, nil
	}

	if file, _ := cmd.Flags().GetString("job-description-file"); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading job description file: %w", err)
		}
		if strings.TrimSpace(string(data)) == "" {
			return "", fmt.Errorf("job description file %s is empty", file)
		}
		return string(data), nil
	}

	prompt := promptui.Prompt{
		Label: "Job description",
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("job description must not be empty")
			}
			return nil
		},
	}

	return prompt.Run()
}
