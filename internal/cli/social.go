package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/contentkit/studio/internal/model"
	"github.com/contentkit/studio/internal/poller"
	"github.com/contentkit/studio/internal/render"
	"github.com/contentkit/studio/internal/service"
)

func NewCmdImport() *cobra.Command {
	o := DefaultGlobalOptions()
	var userID, platform, url string
	var maxPosts int
	cmd := &cobra.Command{
		Use:   "import --platform PLATFORM --url PROFILE_URL",
		Short: "Import posts from a social media profile.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, &o, func(ctx context.Context) error {
				if url == "" {
					return errors.New("--url is required")
				}
				clients, err := o.Clients()
				if err != nil {
					return err
				}
				svc := service.NewImportService(clients.SocialImport, o.validator(),
					o.cfg.Polling.SocialImport, printNotifier{out: o.out}, o.logger)
				h, err := svc.Import(ctx, userID, &model.ScrapeRequest{
					Platform:   model.Platform(platform),
					ProfileURL: url,
					MaxPosts:   maxPosts,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(o.out, "Import %s started.\n", h.JobID())

				final := await(ctx, h)
				if final.Status != nil {
					_ = render.Import(o.out, final.Status)
				}
				if final.State != poller.StateDone {
					return final.Err
				}
				return nil
			})
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	cmd.Flags().StringVar(&userID, "user", "", "User id to notify")
	cmd.Flags().StringVar(&platform, "platform", "", "twitter, linkedin, instagram, facebook, youtube or tiktok")
	cmd.Flags().StringVar(&url, "url", "", "Profile URL")
	cmd.Flags().IntVar(&maxPosts, "max-posts", 0, "Upper bound on imported posts")
	return cmd
}

func NewCmdSuggestions() *cobra.Command {
	o := DefaultGlobalOptions()
	var dismiss string
	cmd := &cobra.Command{
		Use:   "suggestions",
		Short: "List content suggestions that were not dismissed.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, &o, func(ctx context.Context) error {
				clients, err := o.Clients()
				if err != nil {
					return err
				}
				svc := service.NewSuggestionService(clients.Content, o.session)
				if dismiss != "" {
					return svc.Dismiss(ctx, dismiss)
				}
				list, err := svc.List(ctx)
				if err != nil {
					return err
				}
				if len(list) == 0 {
					_, err = fmt.Fprintln(o.out, "No suggestions.")
					return err
				}
				for _, s := range list {
					fmt.Fprintf(o.out, "%s\t%s\n", s.ID, s.Title)
					if s.Description != "" {
						fmt.Fprintf(o.out, "\t%s\n", s.Description)
					}
				}
				return nil
			})
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	cmd.Flags().StringVar(&dismiss, "dismiss", "", "Dismiss the suggestion with this id")
	return cmd
}

func NewCmdMilestones() *cobra.Command {
	o := DefaultGlobalOptions()
	var period string
	cmd := &cobra.Command{
		Use:   "milestones",
		Short: "Show milestones reached since the last check.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, &o, func(ctx context.Context) error {
				clients, err := o.Clients()
				if err != nil {
					return err
				}
				reached, err := service.NewMilestoneService(clients.Analytics, o.session).Check(ctx, period)
				if err != nil {
					return err
				}
				if len(reached) == 0 {
					_, err = fmt.Fprintln(o.out, "No new milestones.")
					return err
				}
				for _, m := range reached {
					fmt.Fprintf(o.out, "Milestone reached: %s (%s)\n", m.Name, m.ReachedAt.Format("2006-01-02"))
				}
				return nil
			})
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	cmd.Flags().StringVar(&period, "period", "30d", "Analytics period")
	return cmd
}
