package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"svyasa/app/auth"
	"svyasa/app/models"
	"svyasa/app/moderation"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const maxSeedComments = 3

func newSeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with generated posts and comments",
		Long: `Generate posts and comments with fake nicknames and text. Everything goes
through the same moderation path as real submissions, so some generated
entries may be rejected.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			count, _ := cmd.Flags().GetInt("count")
			if count < 1 {
				return errors.New("--count must be at least 1")
			}

			store, err := openStore(cfg, zap.NewNop())
			if err != nil {
				return err
			}
			defer store.Close()

			app, err := newApplication(cfg, store)
			if err != nil {
				return err
			}

			created, rejected, err := seed(cmd.Context(), app, count)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d posts (%d rejected by the filter)\n", created, rejected)
			return nil
		},
	}
	cmd.Flags().IntP("count", "n", 10, "Number of posts to generate")
	return cmd
}

// seed creates count posts, each with up to maxSeedComments comments.
func seed(ctx context.Context, app *application, count int) (created, rejected int, err error) {
	for i := 0; i < count; i++ {
		post, err := app.posts.CreatePost(ctx, fakeNickname(), truncate(gofakeit.HipsterSentence(), models.MaxPostLength))
		if errors.Is(err, moderation.ErrRejected) {
			rejected++
			continue
		}
		if err != nil {
			return created, rejected, fmt.Errorf("failed to seed post: %w", err)
		}
		created++

		for j := gofakeit.IntRange(0, maxSeedComments); j > 0; j-- {
			_, err := app.comments.CreateComment(ctx, post.ID, fakeNickname(), truncate(gofakeit.HipsterSentence(), models.MaxCommentLength))
			if err != nil && !errors.Is(err, moderation.ErrRejected) {
				return created, rejected, fmt.Errorf("failed to seed comment: %w", err)
			}
		}
	}
	return created, rejected, nil
}

func fakeNickname() string {
	return truncate(gofakeit.Username(), models.MaxNicknameLength)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func newHashPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print the bcrypt hash to use as admin.password_hash",
		Long:  "Hash a password for the admin config. Without an argument the password is read from the first line of stdin.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return errors.New("no password given")
				}
				password = strings.TrimRight(line, "\r\n")
			}

			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
