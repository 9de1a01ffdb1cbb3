// cmd/issue-token/main.go
package main

import (
	"einvoice-gateway/config"
	"einvoice-gateway/logger"
	"einvoice-gateway/service"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	configPath string
	ttl        time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "issue-token <service-name>",
	Short: "Issue a bearer token for an internal caller of the gateway API",
	Long: `Signs an HS256 token with jwt.secret_key from config.yml (or JWT_SECRET_KEY).
The token names the calling service and is accepted on every /api route.`,
	Args: cobra.ExactArgs(1),
	RunE: runIssueToken,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", ".", "directory containing config.yml")
	rootCmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime, 0 for no expiry")
}

func runIssueToken(cmd *cobra.Command, args []string) error {
	logger.Init()
	config.LoadConfig(configPath)

	token, err := service.NewAuthService(config.AppConfig.JWT.SecretKey).IssueServiceToken(args[0], ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
