package model

import "time"

// GenerateContentKitRequest starts a content kit job.
type GenerateContentKitRequest struct {
	InputType InputType       `json:"inputType" validate:"required,oneof=prompt text url file"`
	InputData ContentKitInput `json:"inputData"`
	Outputs   []OutputKind    `json:"outputs,omitempty" validate:"omitempty,dive,oneof=transcript blogPost linkedInPost twitterThread instagramPost facebookPost images videoClips"`
	Tone      string          `json:"tone,omitempty" validate:"omitempty,max=50"`
}

// ContentKitInput carries the source material. Which field is required
// depends on the input type.
type ContentKitInput struct {
	Text   string `json:"text,omitempty" validate:"omitempty,max=50000"`
	URL    string `json:"url,omitempty" validate:"omitempty,url,max=2048"`
	FileID string `json:"fileId,omitempty"`
	UserID string `json:"userId" validate:"required"`
}

// ContentKitStatus is the full snapshot returned by the status endpoint.
type ContentKitStatus struct {
	JobID       string     `json:"jobId"`
	Status      JobStatus  `json:"status"`
	Progress    *Progress  `json:"progress,omitempty"`
	Outputs     Outputs    `json:"outputs"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Outputs holds the artifacts produced so far. A nil field means "not yet
// produced", never "failed".
type Outputs struct {
	Transcript    *Transcript      `json:"transcript,omitempty"`
	BlogPost      *BlogPost        `json:"blogPost,omitempty"`
	LinkedInPost  *SocialPost      `json:"linkedInPost,omitempty"`
	TwitterThread *TwitterThread   `json:"twitterThread,omitempty"`
	InstagramPost *SocialPost      `json:"instagramPost,omitempty"`
	FacebookPost  *SocialPost      `json:"facebookPost,omitempty"`
	Images        []GeneratedImage `json:"images,omitempty"`
	VideoClips    []VideoClip      `json:"videoClips,omitempty"`
}

// Has reports whether the artifact of the given kind is present.
func (o Outputs) Has(kind OutputKind) bool {
	switch kind {
	case OutputTranscript:
		return o.Transcript != nil
	case OutputBlogPost:
		return o.BlogPost != nil
	case OutputLinkedInPost:
		return o.LinkedInPost != nil
	case OutputTwitterThread:
		return o.TwitterThread != nil
	case OutputInstagramPost:
		return o.InstagramPost != nil
	case OutputFacebookPost:
		return o.FacebookPost != nil
	case OutputImages:
		return o.Images != nil
	case OutputVideoClips:
		return o.VideoClips != nil
	}
	return false
}

// Kinds returns the present kinds in rendering order.
func (o Outputs) Kinds() []OutputKind {
	var kinds []OutputKind
	for _, k := range OutputKinds {
		if o.Has(k) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Merge overlays newer on o. Artifacts present in newer replace those in o;
// artifacts missing from newer are kept, so a key once seen is never lost.
func (o Outputs) Merge(newer Outputs) Outputs {
	out := o
	if newer.Transcript != nil {
		out.Transcript = newer.Transcript
	}
	if newer.BlogPost != nil {
		out.BlogPost = newer.BlogPost
	}
	if newer.LinkedInPost != nil {
		out.LinkedInPost = newer.LinkedInPost
	}
	if newer.TwitterThread != nil {
		out.TwitterThread = newer.TwitterThread
	}
	if newer.InstagramPost != nil {
		out.InstagramPost = newer.InstagramPost
	}
	if newer.FacebookPost != nil {
		out.FacebookPost = newer.FacebookPost
	}
	if newer.Images != nil {
		out.Images = newer.Images
	}
	if newer.VideoClips != nil {
		out.VideoClips = newer.VideoClips
	}
	return out
}

type Transcript struct {
	Text       string  `json:"text"`
	Language   string  `json:"language,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

type BlogPost struct {
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Excerpt   string   `json:"excerpt,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	WordCount int      `json:"wordCount,omitempty"`
}

type SocialPost struct {
	Content        string   `json:"content"`
	Hashtags       []string `json:"hashtags,omitempty"`
	CharacterCount int      `json:"characterCount,omitempty"`
}

type TwitterThread struct {
	Tweets []string `json:"tweets"`
}

type GeneratedImage struct {
	URL      string `json:"url"`
	Prompt   string `json:"prompt,omitempty"`
	Platform string `json:"platform,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// VideoClip describes one extracted clip and its derived renditions.
type VideoClip struct {
	ID              string  `json:"id"`
	Title           string  `json:"title,omitempty"`
	StartTime       float64 `json:"startTime"`
	EndTime         float64 `json:"endTime"`
	Duration        float64 `json:"duration"`
	EngagementScore float64 `json:"engagementScore"`
	SourceText      string  `json:"sourceText,omitempty"`
	VerticalURL     string  `json:"verticalUrl,omitempty"`
	HorizontalURL   string  `json:"horizontalUrl,omitempty"`
	SquareURL       string  `json:"squareUrl,omitempty"`
	OriginalURL     string  `json:"originalUrl,omitempty"`
}

// ContentKitSummary is one entry of the kit list.
type ContentKitSummary struct {
	JobID       string       `json:"jobId"`
	Status      JobStatus    `json:"status"`
	InputType   InputType    `json:"inputType,omitempty"`
	Title       string       `json:"title,omitempty"`
	Outputs     []OutputKind `json:"outputs,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	CompletedAt *time.Time   `json:"completedAt,omitempty"`
}

// ContentKitPage is one page of the token-paginated kit list.
type ContentKitPage struct {
	Items     []ContentKitSummary `json:"items"`
	NextToken string              `json:"nextToken,omitempty"`
}
