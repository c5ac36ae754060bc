package model

import "strings"

// JobStatus is the backend-reported state of an asynchronous job. Spellings
// vary by flow, so comparisons are case-insensitive.
type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusQueued     JobStatus = "QUEUED"
	JobStatusInitiated  JobStatus = "INITIATED"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusInProgress JobStatus = "IN_PROGRESS"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusFailed     JobStatus = "FAILED"
)

func (s JobStatus) normalized() JobStatus {
	return JobStatus(strings.ToUpper(strings.TrimSpace(string(s))))
}

// IsTerminal reports whether no further state changes will occur.
func (s JobStatus) IsTerminal() bool {
	n := s.normalized()
	return n == JobStatusCompleted || n == JobStatusFailed
}

func (s JobStatus) Succeeded() bool {
	return s.normalized() == JobStatusCompleted
}

func (s JobStatus) Failed() bool {
	return s.normalized() == JobStatusFailed
}

// Input types accepted by content kit generation
type InputType string

const (
	InputTypePrompt InputType = "prompt"
	InputTypeText   InputType = "text"
	InputTypeURL    InputType = "url"
	InputTypeFile   InputType = "file"
)

// OutputKind names one artifact of a content kit.
type OutputKind string

const (
	OutputTranscript    OutputKind = "transcript"
	OutputBlogPost      OutputKind = "blogPost"
	OutputLinkedInPost  OutputKind = "linkedInPost"
	OutputTwitterThread OutputKind = "twitterThread"
	OutputInstagramPost OutputKind = "instagramPost"
	OutputFacebookPost  OutputKind = "facebookPost"
	OutputImages        OutputKind = "images"
	OutputVideoClips    OutputKind = "videoClips"
)

// OutputKinds lists every kind in rendering order.
var OutputKinds = []OutputKind{
	OutputTranscript, OutputBlogPost, OutputLinkedInPost, OutputTwitterThread,
	OutputInstagramPost, OutputFacebookPost, OutputImages, OutputVideoClips,
}

// Social platforms
type Platform string

const (
	PlatformTwitter   Platform = "twitter"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
	PlatformYouTube   Platform = "youtube"
	PlatformTikTok    Platform = "tiktok"
)

var ValidPlatforms = []Platform{
	PlatformTwitter, PlatformLinkedIn, PlatformInstagram,
	PlatformFacebook, PlatformYouTube, PlatformTikTok,
}

func (p Platform) Valid() bool {
	for _, v := range ValidPlatforms {
		if v == p {
			return true
		}
	}
	return false
}

// File categories accepted by the upload pipeline
type FileCategory string

const (
	FileCategoryPDF   FileCategory = "pdf"
	FileCategoryAudio FileCategory = "audio"
	FileCategoryVideo FileCategory = "video"
)
