package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emilythestrangee/comment-votes/internal/database"
	"github.com/emilythestrangee/comment-votes/internal/logging"
)

func newRecountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recount",
		Short: "Rebuild stored vote tallies from the vote ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer closeDB(db)

			ctx := cmd.Context()
			posts, err := database.RecountAll(ctx, db.GetDB(), database.TargetPost)
			if err != nil {
				return err
			}
			comments, err := database.RecountAll(ctx, db.GetDB(), database.TargetComment)
			if err != nil {
				return err
			}

			logging.Logger.Info("tallies recounted", "posts", posts, "comments", comments)
			fmt.Fprintf(cmd.OutOrStdout(), "Recounted %d posts and %d comments\n", posts, comments)
			return nil
		},
	}
}
