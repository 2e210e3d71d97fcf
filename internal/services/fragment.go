package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Henok-Aragaw/echo/internal/blob"
	"github.com/Henok-Aragaw/echo/internal/insight"
	"github.com/Henok-Aragaw/echo/internal/model"
	"github.com/Henok-Aragaw/echo/internal/store"
)

const defaultTimelineTake = 10

// ImageUpload carries the raw bytes of a capture's attached image.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// CreateFragmentRequest is the validated-later input of one capture action.
type CreateFragmentRequest struct {
	User    model.User
	Type    string
	Content string
	Image   *ImageUpload
}

// FragmentService handles capture ingestion and the timeline read path.
type FragmentService struct {
	store    store.Store
	insights *insight.Generator
	uploader blob.Uploader
	log      zerolog.Logger
}

func NewFragmentService(s store.Store, gen *insight.Generator, up blob.Uploader, log zerolog.Logger) *FragmentService {
	return &FragmentService{store: s, insights: gen, uploader: up, log: log}
}

// Create validates and persists one captured moment, then generates its
// insight best-effort. Upload failures abort the request before any row is
// written; insight trouble never does.
func (s *FragmentService) Create(ctx context.Context, req CreateFragmentRequest) (*model.Fragment, error) {
	ftype, err := model.ParseFragmentType(req.Type)
	if err != nil {
		return nil, err
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", model.ErrValidation)
	}

	var mediaURL *string
	if req.Image != nil {
		ftype = model.FragmentImage
		url, err := s.uploader.Upload(ctx, req.Image.Filename, req.Image.ContentType, req.Image.Data)
		if err != nil {
			return nil, fmt.Errorf("image upload failed: %w", err)
		}
		mediaURL = &url
	}

	if err := s.store.Users().Ensure(ctx, &req.User); err != nil {
		return nil, err
	}

	frag, err := s.store.Fragments().Create(ctx, &model.Fragment{
		UserID:   req.User.UserID,
		Type:     ftype,
		Content:  content,
		MediaURL: mediaURL,
	})
	if err != nil {
		return nil, err
	}
	fragmentsCapturedTotal.WithLabelValues(string(ftype)).Inc()

	// Step two of the capture saga: fire-and-forget insight. The generator
	// is total, so only the insert can fail; that failure stays here.
	text := s.insights.FragmentInsight(ctx, content, ftype, content)
	if _, err := s.store.Insights().Create(ctx, &model.Insight{
		FragmentID: frag.FragmentID,
		Content:    text,
	}); err != nil {
		insightPersistFailuresTotal.Inc()
		s.log.Error().Err(err).Str("fragment_id", frag.FragmentID).Msg("insight persist failed")
	}

	return s.store.Fragments().GetByID(ctx, req.User.UserID, frag.FragmentID)
}

// Get returns one fragment joined with its insight.
func (s *FragmentService) Get(ctx context.Context, userID, fragmentID string) (*model.Fragment, error) {
	return s.store.Fragments().GetByID(ctx, userID, fragmentID)
}

// Timeline lists fragments newest-first with offset pagination and an
// optional single-day window.
func (s *FragmentService) Timeline(ctx context.Context, req model.ListFragmentsRequest) ([]*model.Fragment, error) {
	if req.Take <= 0 {
		req.Take = defaultTimelineTake
	}
	if req.Skip < 0 {
		req.Skip = 0
	}
	return s.store.Fragments().List(ctx, req)
}
