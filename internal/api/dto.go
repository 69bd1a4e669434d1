package api

import (
	"github.com/bryanpdl/briefly/internal/brief"
	"github.com/bryanpdl/briefly/internal/briefservice"
	"github.com/bryanpdl/briefly/internal/inline"
	"github.com/bryanpdl/briefly/internal/publication"
)

// BriefDetail is the full draft response type (aliased from the domain layer).
type BriefDetail = briefservice.BriefDetail

// BriefListItem is a lightweight item in a draft listing (aliased from the domain layer).
type BriefListItem = briefservice.BriefListItem

// BriefListResponse wraps draft listings.
type BriefListResponse struct {
	Briefs []BriefListItem `json:"briefs" validate:"required"`
}

// UpdateBriefRequest is the request body for replacing a brief's text.
type UpdateBriefRequest struct {
	Text string `json:"text" example:"Introduction:\nHello" validate:"required"`
}

// EditSectionRequest is the request body for editing one section.
type EditSectionRequest struct {
	Content string `json:"content" example:"Two weeks from kickoff." validate:"required"`
}

// RenderResponse wraps rendered sections.
type RenderResponse struct {
	Sections []inline.RenderedSection `json:"sections" validate:"required"`
}

// ShareResponse carries the e-mail share link.
type ShareResponse struct {
	Mailto string `json:"mailto" example:"mailto:?subject=Project%20Brief&body=..." validate:"required"`
}

// PublishResponse is returned after publishing (aliased from the domain layer).
type PublishResponse = briefservice.PublishResult

// PublishedView is the public brief payload (aliased from the domain layer).
type PublishedView = briefservice.PublishedView

// PublishedListResponse wraps published brief listings and search hits.
type PublishedListResponse struct {
	Results []publication.Summary `json:"results" validate:"required"`
}

// ParseRequest is the request body for the stateless parse utility.
type ParseRequest struct {
	Text string `json:"text" example:"Goals:\nShip it" validate:"required"`
	Mode string `json:"mode,omitempty" example:"trimmed" enums:"raw,trimmed"`
}

// ParseResponse carries parsed and rendered sections.
type ParseResponse struct {
	Sections []brief.Section          `json:"sections" validate:"required"`
	Rendered []inline.RenderedSection `json:"rendered" validate:"required"`
}

// UploadResponse is returned after a successful reference image upload.
type UploadResponse struct {
	Filename string `json:"filename" example:"1700000000000_1a2b3c4d_mood.png" validate:"required"`
	Size     int    `json:"size" example:"12345" validate:"required"`
	URL      string `json:"url" example:"http://localhost:8080/uploads/1700000000000_1a2b3c4d_mood.png" validate:"required"`
	MIMEType string `json:"mime_type" example:"image/png" validate:"required"`
}
