package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/Henok-Aragaw/echo/internal/api/respond"
	"github.com/Henok-Aragaw/echo/internal/api/validate"
	"github.com/Henok-Aragaw/echo/internal/model"
	"github.com/Henok-Aragaw/echo/internal/services"
)

// maxImageBytes bounds a single capture's attached image.
const maxImageBytes = 10 << 20

type FragmentHandler struct {
	svc *services.FragmentService
	loc *time.Location
}

func NewFragmentHandler(svc *services.FragmentService, loc *time.Location) *FragmentHandler {
	return &FragmentHandler{svc: svc, loc: loc}
}

// CreateFragment POST /api/fragments (multipart: type, content, optional image)
func (h *FragmentHandler) CreateFragment(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		respond.WriteBadRequest(w, "invalid multipart form")
		return
	}
	fragmentType := r.FormValue("type")
	content := r.FormValue("content")
	if err := validate.CreateFragment(fragmentType, content); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	req := services.CreateFragmentRequest{
		User:    sess.User,
		Type:    fragmentType,
		Content: content,
	}

	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer func() { _ = file.Close() }()
		data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
		if err != nil {
			respond.WriteBadRequest(w, "could not read image")
			return
		}
		if len(data) > maxImageBytes {
			respond.WriteBadRequest(w, "image exceeds 10MB")
			return
		}
		req.Image = &services.ImageUpload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		}
	case errors.Is(err, http.ErrMissingFile):
		// text-only capture
	default:
		respond.WriteBadRequest(w, "invalid image field")
		return
	}

	out, err := h.svc.Create(r.Context(), req)
	if err != nil {
		if errors.Is(err, model.ErrValidation) {
			respond.WriteBadRequest(w, err.Error())
			return
		}
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// GetTimeline GET /api/fragments/timeline?skip&take&date
func (h *FragmentHandler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())
	q := r.URL.Query()

	req := model.ListFragmentsRequest{UserID: sess.User.UserID}
	if s := q.Get("skip"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			req.Skip = n
		}
	}
	if s := q.Get("take"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			req.Take = n
		}
	}
	if s := q.Get("date"); s != "" {
		if err := validate.Date(s); err != nil {
			respond.WriteBadRequest(w, err.Error())
			return
		}
		day, _ := time.ParseInLocation("2006-01-02", s, h.loc)
		req.Day = &day
	}

	out, err := h.svc.Timeline(r.Context(), req)
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	if out == nil {
		out = []*model.Fragment{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"fragments": out, "count": len(out)})
}

// GetFragment GET /api/fragments/{fragmentId}
func (h *FragmentHandler) GetFragment(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())
	v := mux.Vars(r)

	out, err := h.svc.Get(r.Context(), sess.User.UserID, v["fragmentId"])
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respond.WriteNotFound(w, "fragment not found")
			return
		}
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}
