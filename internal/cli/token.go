package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/emilythestrangee/comment-votes/internal/auth"
	"github.com/emilythestrangee/comment-votes/internal/models"
)

func newTokenCmd() *cobra.Command {
	var (
		username string
		ttl      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a signed API token for a user",
		Long:  "Ensure a user with the given name exists and print a bearer token for it.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return fmt.Errorf("--username is required")
			}
			if ttl <= 0 {
				return fmt.Errorf("--ttl must be positive")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer closeDB(db)

			var user models.User
			if err := db.GetDB().WithContext(cmd.Context()).Where(models.User{Username: username}).FirstOrCreate(&user).Error; err != nil {
				return fmt.Errorf("failed to load user: %w", err)
			}

			tok, err := auth.IssueToken([]byte(cfg.JWTSecret), auth.Identity{UserID: user.ID, Username: user.Username}, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "user to issue the token for")
	cmd.Flags().DurationVar(&ttl, "ttl", auth.DefaultTTL, "token lifetime")

	return cmd
}
