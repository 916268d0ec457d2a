package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/cv-tailor/internal/server"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API bearer token",
	Long:  "Issues a signed bearer token for the API. Requires JWT_SECRET; the server only checks tokens when it is set.",
	RunE:  runToken,
}

var (
	tokenName     string
	tokenClientID string
)

func init() {
	tokenCmd.Flags().StringVarP(&tokenName, "name", "n", "", "Name of the client the token is issued to (required)")
	tokenCmd.Flags().StringVar(&tokenClientID, "client-id", "", "Client UUID (a new one is generated when empty)")

	if err := tokenCmd.MarkFlagRequired("name"); err != nil {
		panic(fmt.Sprintf("failed to mark name flag as required: %v", err))
	}

	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.JWT.Enabled() {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}

	clientID := uuid.New()
	if tokenClientID != "" {
		clientID, err = uuid.Parse(tokenClientID)
		if err != nil {
			return fmt.Errorf("invalid client ID: %w", err)
		}
	}

	token, err := server.NewJWTService(&cfg.JWT).GenerateToken(clientID, tokenName)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
	return err
}
