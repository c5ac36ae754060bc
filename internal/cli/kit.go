package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/contentkit/studio/internal/client"
	"github.com/contentkit/studio/internal/model"
	"github.com/contentkit/studio/internal/poller"
	"github.com/contentkit/studio/internal/render"
	"github.com/contentkit/studio/internal/service"
)

func NewCmdKit() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kit",
		Short: "Generate and manage content kits.",
	}
	cmd.AddCommand(
		NewCmdKitGenerate(),
		NewCmdKitStatus(),
		NewCmdKitList(),
		NewCmdKitDelete(),
		NewCmdKitDownload(),
	)
	return cmd
}

func (o *GlobalOptions) kitService(clients *client.Clients) *service.KitService {
	return service.NewKitService(clients.ContentKit, o.validator(), service.KitServiceConfig{
		Interval: o.cfg.Polling.ContentKit,
		Notifier: printNotifier{out: o.out},
		Logger:   o.logger,
	})
}

type KitGenerateOptions struct {
	GlobalOptions

	UserID  string
	Type    string
	Text    string
	URL     string
	FileID  string
	Outputs []string
	Tone    string
	Detach  bool
}

func DefaultKitGenerateOptions() *KitGenerateOptions {
	return &KitGenerateOptions{
		GlobalOptions: DefaultGlobalOptions(),
		Type:          string(model.InputTypePrompt),
	}
}

func (o *KitGenerateOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)
	fs.StringVar(&o.UserID, "user", o.UserID, "User id the kit is generated for")
	fs.StringVar(&o.Type, "type", o.Type, "Input type: prompt, text, url or file")
	fs.StringVar(&o.Text, "text", o.Text, "Prompt or text input")
	fs.StringVar(&o.URL, "url", o.URL, "Source URL")
	fs.StringVar(&o.FileID, "file-id", o.FileID, "Id of an uploaded file")
	fs.StringSliceVar(&o.Outputs, "outputs", o.Outputs, "Outputs to produce (default: all)")
	fs.StringVar(&o.Tone, "tone", o.Tone, "Tone of voice")
	fs.BoolVar(&o.Detach, "detach", o.Detach, "Print the job id and exit without waiting")
}

func (o *KitGenerateOptions) Validate(_ []string) error {
	if o.UserID == "" {
		return errors.New("--user is required")
	}
	return nil
}

func (o *KitGenerateOptions) request() *model.GenerateContentKitRequest {
	req := &model.GenerateContentKitRequest{
		InputType: model.InputType(o.Type),
		InputData: model.ContentKitInput{
			Text:   o.Text,
			URL:    o.URL,
			FileID: o.FileID,
			UserID: o.UserID,
		},
		Tone: o.Tone,
	}
	for _, out := range o.Outputs {
		req.Outputs = append(req.Outputs, model.OutputKind(out))
	}
	return req
}

func (o *KitGenerateOptions) Run(ctx context.Context) error {
	clients, err := o.Clients()
	if err != nil {
		return err
	}
	svc := o.kitService(clients)
	list := service.NewKitList(clients.ContentKit, service.DefaultPageSize)
	svc.Track(list)

	h, err := svc.Generate(ctx, o.request())
	if err != nil {
		return err
	}
	fmt.Fprintf(o.out, "Job %s accepted.\n", h.JobID())
	if o.Detach {
		return nil
	}
	if err := followKit(ctx, o.out, h); err != nil {
		return err
	}
	// The list is reloaded before the handle finishes; it stays empty when
	// the reload failed.
	if items := list.Items(); len(items) > 0 {
		fmt.Fprintln(o.out)
		return render.KitList(o.out, items, list.HasMore())
	}
	return nil
}

func NewCmdKitGenerate() *cobra.Command {
	o := DefaultKitGenerateOptions()
	cmd := &cobra.Command{
		Use:   "generate --user ID [--type TYPE] [--text TEXT | --url URL | --file-id ID]",
		Short: "Generate a content kit and wait for it.",
		Example: `  # Generate every output from a prompt
  kitctl kit generate --user u1 --text "Five tips for remote teams"

  # Only a blog post and a thread from an article
  kitctl kit generate --user u1 --type url --url https://example.com/post --outputs blogPost,twitterThread`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context())
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

// followKit prints progress until the job ends, then the kit itself.
func followKit(ctx context.Context, out io.Writer, h *service.KitHandle) error {
	last := -1
	for {
		select {
		case <-ctx.Done():
			h.Stop()
			h.Wait()
			return ctx.Err()
		case snap, ok := <-h.Updates():
			if !ok {
				final := h.Wait()
				if final.State != poller.StateDone {
					if final.Status != nil {
						_ = render.Kit(out, final.Status)
					}
					return final.Err
				}
				return render.Kit(out, final.Status)
			}
			if snap.Status == nil || snap.Status.Progress == nil {
				continue
			}
			if p := snap.Status.Progress; p.Percentage != last {
				last = p.Percentage
				fmt.Fprintf(out, "%3d%% %s\n", p.Percentage, p.CurrentStep)
			}
		}
	}
}

func NewCmdKitStatus() *cobra.Command {
	o := DefaultGlobalOptions()
	cmd := &cobra.Command{
		Use:   "status JOB_ID",
		Short: "Show the current state of a content kit.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, &o, func(ctx context.Context) error {
				clients, err := o.Clients()
				if err != nil {
					return err
				}
				st, err := o.kitService(clients).Status(ctx, args[0])
				if err != nil {
					return err
				}
				return render.Kit(o.out, st)
			})
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func NewCmdKitList() *cobra.Command {
	o := DefaultGlobalOptions()
	var all bool
	var pageSize int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List content kits, newest first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, &o, func(ctx context.Context) error {
				clients, err := o.Clients()
				if err != nil {
					return err
				}
				list := service.NewKitList(clients.ContentKit, pageSize)
				if _, err := list.LoadMore(ctx); err != nil {
					return err
				}
				for all && list.HasMore() {
					if _, err := list.LoadMore(ctx); err != nil {
						return err
					}
				}
				return render.KitList(o.out, list.Items(), list.HasMore())
			})
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	cmd.Flags().BoolVar(&all, "all", false, "Load every page")
	cmd.Flags().IntVar(&pageSize, "page-size", service.DefaultPageSize, "Kits per page")
	return cmd
}

func NewCmdKitDelete() *cobra.Command {
	o := DefaultGlobalOptions()
	cmd := &cobra.Command{
		Use:   "delete JOB_ID",
		Short: "Delete a content kit.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, &o, func(ctx context.Context) error {
				clients, err := o.Clients()
				if err != nil {
					return err
				}
				if err := o.kitService(clients).Delete(ctx, args[0]); err != nil {
					return err
				}
				_, err = fmt.Fprintf(o.out, "Deleted %s.\n", args[0])
				return err
			})
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func NewCmdKitDownload() *cobra.Command {
	o := DefaultGlobalOptions()
	var dir string
	cmd := &cobra.Command{
		Use:   "download JOB_ID",
		Short: "Download the archive of a completed content kit.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, &o, func(ctx context.Context) error {
				clients, err := o.Clients()
				if err != nil {
					return err
				}
				tmp, err := os.CreateTemp(dir, ".kit-*")
				if err != nil {
					return err
				}
				defer os.Remove(tmp.Name())

				info, err := o.kitService(clients).Download(ctx, args[0], tmp)
				if cerr := tmp.Close(); err == nil {
					err = cerr
				}
				if err != nil {
					return err
				}
				name := info.FileName
				if name == "" {
					name = args[0] + ".zip"
				}
				dst := filepath.Join(dir, filepath.Base(name))
				if err := os.Rename(tmp.Name(), dst); err != nil {
					return err
				}
				_, err = fmt.Fprintf(o.out, "Saved %s (%d bytes, %s).\n", dst, info.Size, info.ContentType)
				return err
			})
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	cmd.Flags().StringVarP(&dir, "output-dir", "o", ".", "Directory to save the archive in")
	return cmd
}
