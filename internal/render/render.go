// Package render writes job snapshots as plain text. Each output section
// is rendered on its own: a missing artifact prints nothing, and a job
// error is printed first without hiding the artifacts already produced.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/contentkit/studio/internal/model"
)

// DownloadReady reports whether the kit archive can be downloaded.
func DownloadReady(st *model.ContentKitStatus) bool {
	return st != nil && st.Status.Succeeded()
}

// Kit writes the current view of a content kit job.
func Kit(w io.Writer, st *model.ContentKitStatus) error {
	p := &printer{w: w}

	p.linef("Kit %s: %s", st.JobID, statusText(st.Status))
	if st.Error != "" {
		p.linef("ERROR: %s", st.Error)
	}
	if st.Progress != nil && !st.Status.IsTerminal() {
		progress(p, st.Progress)
	}

	o := st.Outputs
	if o.Transcript != nil {
		p.section("Transcript")
		p.line(o.Transcript.Text)
	}
	if o.BlogPost != nil {
		p.section("Blog post")
		if o.BlogPost.Title != "" {
			p.linef("# %s", o.BlogPost.Title)
		}
		p.line(o.BlogPost.Content)
		if len(o.BlogPost.Tags) > 0 {
			p.linef("Tags: %s", strings.Join(o.BlogPost.Tags, ", "))
		}
	}
	if o.LinkedInPost != nil {
		p.section("LinkedIn post")
		socialPost(p, o.LinkedInPost)
	}
	if o.TwitterThread != nil {
		p.section("Twitter thread")
		for i, tweet := range o.TwitterThread.Tweets {
			p.linef("%d/%d %s", i+1, len(o.TwitterThread.Tweets), tweet)
		}
	}
	if o.InstagramPost != nil {
		p.section("Instagram post")
		socialPost(p, o.InstagramPost)
	}
	if o.FacebookPost != nil {
		p.section("Facebook post")
		socialPost(p, o.FacebookPost)
	}
	if o.Images != nil {
		p.section("Images")
		for _, img := range o.Images {
			if img.Platform != "" {
				p.linef("- [%s] %s", img.Platform, img.URL)
			} else {
				p.linef("- %s", img.URL)
			}
		}
	}
	if o.VideoClips != nil {
		p.section("Video clips")
		for _, clip := range o.VideoClips {
			videoClip(p, clip)
		}
	}

	if DownloadReady(st) {
		p.line("")
		p.line("Download All: available")
	}
	return p.err
}

func progress(p *printer, pr *model.Progress) {
	line := fmt.Sprintf("Progress: %d%%", pr.Percentage)
	if pr.TotalSteps > 0 {
		line += fmt.Sprintf(" (%d/%d steps)", len(pr.CompletedSteps), pr.TotalSteps)
	}
	if pr.CurrentStep != "" {
		line += " - " + pr.CurrentStep
	}
	if pr.EstimatedTimeRemaining != nil {
		line += fmt.Sprintf(", about %s left", time.Duration(*pr.EstimatedTimeRemaining)*time.Second)
	}
	p.line(line)
}

func socialPost(p *printer, post *model.SocialPost) {
	p.line(post.Content)
	if len(post.Hashtags) > 0 {
		p.line(strings.Join(post.Hashtags, " "))
	}
}

// videoClip prints the clip metadata and renditions exactly as received.
func videoClip(p *printer, c model.VideoClip) {
	title := c.Title
	if title == "" {
		title = c.ID
	}
	p.linef("- %s (%vs, score %v)", title, c.Duration, c.EngagementScore)
	if c.SourceText != "" {
		p.linef("  %q", c.SourceText)
	}
	p.linef("  vertical:   %s", c.VerticalURL)
	p.linef("  horizontal: %s", c.HorizontalURL)
	p.linef("  square:     %s", c.SquareURL)
	p.linef("  original:   %s", c.OriginalURL)
}

func Transcription(w io.Writer, st *model.TranscriptionStatus) error {
	p := &printer{w: w}
	p.linef("Transcription %s: %s", st.JobID, statusText(st.Status))
	if st.ErrorMessage != "" {
		p.linef("ERROR: %s", st.ErrorMessage)
	}
	if st.Transcript != "" {
		p.section("Transcript")
		if st.Confidence > 0 {
			p.linef("Confidence: %.0f%%", st.Confidence*100)
		}
		p.line(st.Transcript)
	}
	return p.err
}

func PDF(w io.Writer, st *model.PDFStatus) error {
	p := &printer{w: w}
	p.linef("PDF %s: %s", st.JobID, statusText(st.Status))
	if st.ErrorMessage != "" {
		p.linef("ERROR: %s", st.ErrorMessage)
	}
	if st.ExtractedText != "" {
		p.section("Extracted text")
		p.linef("%d pages, %d words, %d characters", st.PageCount, st.WordCount, st.CharCount)
		p.line(st.ExtractedText)
	}
	return p.err
}

func Import(w io.Writer, st *model.ImportStatus) error {
	p := &printer{w: w}
	p.linef("Import %s: %s", st.JobID, statusText(st.Status))
	if st.ErrorMessage != "" {
		p.linef("ERROR: %s", st.ErrorMessage)
	}
	if st.Progress.Total > 0 {
		p.linef("Progress: %d/%d (%d%%)", st.Progress.Processed, st.Progress.Total, st.Progress.Percentage)
	}
	r := st.Results
	if r.Imported+r.Skipped+r.Failed > 0 {
		p.linef("Imported %d, skipped %d, failed %d", r.Imported, r.Skipped, r.Failed)
	}
	return p.err
}

// KitList writes one line per kit.
func KitList(w io.Writer, items []model.ContentKitSummary, hasMore bool) error {
	p := &printer{w: w}
	if len(items) == 0 {
		p.line("No content kits yet.")
		return p.err
	}
	for _, it := range items {
		title := it.Title
		if title == "" {
			title = string(it.InputType)
		}
		p.linef("%-36s  %-11s  %s  %s", it.JobID, it.Status, it.CreatedAt.Format("2006-01-02 15:04"), title)
	}
	if hasMore {
		p.line("(more available)")
	}
	return p.err
}

func statusText(s model.JobStatus) string {
	if s == "" {
		return "PENDING"
	}
	return string(s)
}

// printer stops writing after the first error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(s string) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintln(p.w, s)
}

func (p *printer) linef(format string, args ...any) {
	p.line(fmt.Sprintf(format, args...))
}

func (p *printer) section(title string) {
	p.line("")
	p.linef("== %s ==", title)
}
