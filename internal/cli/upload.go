package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/contentkit/studio/internal/media"
	"github.com/contentkit/studio/internal/model"
	"github.com/contentkit/studio/internal/poller"
	"github.com/contentkit/studio/internal/render"
	"github.com/contentkit/studio/internal/service"
)

type UploadOptions struct {
	GlobalOptions

	UserID        string
	Title         string
	Language      string
	Duration      time.Duration
	KnowledgeBase bool

	file media.File
}

func DefaultUploadOptions() *UploadOptions {
	return &UploadOptions{GlobalOptions: DefaultGlobalOptions()}
}

func (o *UploadOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)
	fs.StringVar(&o.UserID, "user", o.UserID, "User id to notify")
	fs.StringVar(&o.Title, "title", o.Title, "Document title (knowledge base only)")
	fs.StringVar(&o.Language, "language", o.Language, "Spoken language of audio and video")
	fs.DurationVar(&o.Duration, "duration", o.Duration, "Length of audio or video, checked against the upload limits")
	fs.BoolVar(&o.KnowledgeBase, "knowledge-base", o.KnowledgeBase, "Add the file to the knowledge base instead of the media library")
}

// Validate inspects the file. Audio and video are checked against their
// duration limits, so their length must be given.
func (o *UploadOptions) Validate(args []string) error {
	file, err := media.Inspect(args[0], o.Duration)
	if err != nil {
		return err
	}
	category, _ := media.CategoryOf(file.ContentType)
	if (category == model.FileCategoryAudio || category == model.FileCategoryVideo) && o.Duration <= 0 {
		return fmt.Errorf("--duration is required for %s files", category)
	}
	o.file = file
	return nil
}

func (o *UploadOptions) Run(ctx context.Context, path string) error {
	file := o.file
	body, err := os.Open(path)
	if err != nil {
		return err
	}
	defer body.Close()

	clients, err := o.Clients()
	if err != nil {
		return err
	}
	opts := service.MediaLibraryOptions
	if o.KnowledgeBase {
		opts = service.KnowledgeBaseOptions
	}
	opts.Language = o.Language

	pipeline := service.NewUploadPipeline(service.UploadPipelineConfig{
		Media:         clients.Media,
		Transcription: clients.Transcription,
		PDF:           clients.PDF,
		KnowledgeBase: clients.KnowledgeBase,
		Notifier:      printNotifier{out: o.out},
		Intervals: service.PipelineIntervals{
			Transcription: o.cfg.Polling.Transcription,
			PDF:           o.cfg.Polling.PDF,
		},
		Logger: o.logger,
	}, opts)

	job, err := pipeline.Process(ctx, service.Upload{
		File:   file,
		Body:   body,
		UserID: o.UserID,
		Title:  o.Title,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(o.out, "Uploaded %s as %s, processing job %s.\n", file.Name, job.FileID, job.Handle.JobID())

	final := await(ctx, job.Handle)
	if st := final.Status; st != nil {
		switch {
		case st.PDF != nil:
			_ = render.PDF(o.out, st.PDF)
		case st.Transcription != nil:
			_ = render.Transcription(o.out, st.Transcription)
		}
	}
	if final.State != poller.StateDone {
		return final.Err
	}
	if files := pipeline.Files(); len(files) > 0 {
		fmt.Fprintln(o.out)
		return printFiles(o.out, files)
	}
	return nil
}

func printFiles(w io.Writer, files []model.MediaFile) error {
	if len(files) == 0 {
		_, err := fmt.Fprintln(w, "No files.")
		return err
	}
	for _, f := range files {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", f.ID, f.Category, f.FileName, f.Size); err != nil {
			return err
		}
	}
	return nil
}

func NewCmdUpload() *cobra.Command {
	o := DefaultUploadOptions()
	cmd := &cobra.Command{
		Use:   "upload PATH",
		Short: "Upload a PDF, audio or video file and wait until it is processed.",
		Example: `  # Transcribe a podcast episode
  kitctl upload episode.mp3 --duration 42m --language en

  # Add a whitepaper to the knowledge base
  kitctl upload whitepaper.pdf --knowledge-base --title "Q3 whitepaper"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), args[0])
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func NewCmdFiles() *cobra.Command {
	o := DefaultGlobalOptions()
	cmd := &cobra.Command{
		Use:   "files",
		Short: "List the files in the media library.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, &o, func(ctx context.Context) error {
				clients, err := o.Clients()
				if err != nil {
					return err
				}
				files, err := clients.Media.ListFiles(ctx)
				if err != nil {
					return err
				}
				return printFiles(o.out, files)
			})
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}
