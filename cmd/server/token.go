package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ignatzorin/barter-backend/internal/service"
)

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().String("user", "", "User ID the token is issued for")
	_ = tokenCmd.MarkFlagRequired("user")
}

// Регистрации в сервисе нет, токены для разработки выпускаются этой командой.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an access token for a user",
	RunE:  runToken,
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	raw, _ := cmd.Flags().GetString("user")
	userID, err := uuid.Parse(raw)
	if err != nil {
		return fmt.Errorf("token: некорректный --user: %w", err)
	}

	token, expires, err := service.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL).GenerateAccess(userID)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expires.Format(time.RFC3339))
	return nil
}
