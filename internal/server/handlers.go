package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/candidate-profiler/internal/db"
	"github.com/jonathan/candidate-profiler/internal/ingestion"
	"github.com/jonathan/candidate-profiler/internal/linkedin"
	"github.com/jonathan/candidate-profiler/internal/logger"
	"github.com/jonathan/candidate-profiler/internal/pipeline"
	"github.com/jonathan/candidate-profiler/internal/scoring"
	"github.com/jonathan/candidate-profiler/internal/types"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 4 << 20

var validate = validator.New()

// ExtractRequest is the body of POST /extract. Profile, when present, is
// structured LinkedIn profile JSON and takes the place of Text.
type ExtractRequest struct {
	Source  string          `json:"source" validate:"required,oneof=resume linkedin RESUME LINKEDIN"`
	Text    string          `json:"text,omitempty"`
	Format  string          `json:"format,omitempty" validate:"omitempty,oneof=text html"`
	Profile json.RawMessage `json:"profile,omitempty"`
}

// CandidateRequest is the body of POST /candidates
type CandidateRequest struct {
	ID             string          `json:"id,omitempty"`
	ResumeText     string          `json:"resume_text,omitempty"`
	ResumeFormat   string          `json:"resume_format,omitempty" validate:"omitempty,oneof=text html"`
	LinkedInText   string          `json:"linkedin_text,omitempty"`
	LinkedInFormat string          `json:"linkedin_format,omitempty" validate:"omitempty,oneof=text html"`
	Profile        json.RawMessage `json:"profile,omitempty"`
	ProfileURL     string          `json:"profile_url,omitempty" validate:"omitempty,url"`
	AsOf           string          `json:"as_of,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Store          bool            `json:"store,omitempty"`
}

// CandidateResponse is a merged record, with its ID when it was stored
type CandidateResponse struct {
	ID          string                 `json:"id,omitempty"`
	Record      *types.CandidateRecord `json:"record"`
	NeedsReview bool                   `json:"needs_review"`
}

// decodeBody reads and validates a JSON request body
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &ErrValidation{Message: "invalid request body: " + err.Error()}
	}
	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return &ErrValidation{Field: fe.Field(), Message: fmt.Sprintf("failed %q check", fe.Tag())}
		}
		return &ErrValidation{Message: err.Error()}
	}
	return nil
}

// documentText turns request text into plain text, stripping markup for html
func documentText(text, format string) (string, error) {
	if format == "html" {
		return ingestion.ExtractHTMLText(text)
	}
	return text, nil
}

// toInput builds a pipeline input from the request
func (req *CandidateRequest) toInput() (pipeline.Input, error) {
	in := pipeline.Input{ID: req.ID, ProfileURL: req.ProfileURL}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}

	if req.ResumeText != "" {
		text, err := documentText(req.ResumeText, req.ResumeFormat)
		if err != nil {
			return in, err
		}
		in.Resume = &types.RawDocument{Source: types.SourceResume, Text: text}
	}
	if req.LinkedInText != "" {
		text, err := documentText(req.LinkedInText, req.LinkedInFormat)
		if err != nil {
			return in, err
		}
		in.LinkedIn = &types.RawDocument{Source: types.SourceLinkedIn, Text: text}
	}
	if len(req.Profile) > 0 {
		profile, err := linkedin.ParseProfile(req.Profile)
		if err != nil {
			return in, err
		}
		in.Profile = profile
	}
	return in, nil
}

func (req *CandidateRequest) runOptions() pipeline.RunOptions {
	asOf := time.Now().UTC()
	if req.AsOf != "" {
		// already checked by the datetime tag
		asOf, _ = time.Parse(time.DateOnly, req.AsOf)
	}
	return pipeline.RunOptions{AsOf: &asOf}
}

// handleExtract returns the partial record for one document
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.errResponse(w, r, err)
		return
	}
	source := types.Source(strings.ToUpper(req.Source))

	var record *types.PartialCandidateRecord
	switch {
	case len(req.Profile) > 0:
		if source != types.SourceLinkedIn {
			s.errResponse(w, r, &ErrValidation{Field: "profile", Message: "only valid for the linkedin source"})
			return
		}
		profile, err := linkedin.ParseProfile(req.Profile)
		if err != nil {
			s.errResponse(w, r, err)
			return
		}
		record = linkedin.FromProfile(profile, s.runner.Normalizer())

	default:
		text, err := documentText(req.Text, req.Format)
		if err != nil {
			s.errResponse(w, r, err)
			return
		}
		record, err = s.runner.Parser().ParseDocument(types.RawDocument{Source: source, Text: text})
		if err != nil {
			s.errResponse(w, r, err)
			return
		}
	}

	s.jsonResponse(w, http.StatusOK, record)
}

// handleCreateCandidate runs the pipeline and optionally stores the record
func (s *Server) handleCreateCandidate(w http.ResponseWriter, r *http.Request) {
	var req CandidateRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.errResponse(w, r, err)
		return
	}
	if req.Store && s.store == nil {
		s.errResponse(w, r, ErrStoreDisabled)
		return
	}
	in, err := req.toInput()
	if err != nil {
		s.errResponse(w, r, err)
		return
	}

	resp, err := s.runCandidate(r, &req, in, req.runOptions())
	if err != nil {
		s.errResponse(w, r, err)
		return
	}

	status := http.StatusOK
	if resp.ID != "" {
		status = http.StatusCreated
	}
	s.jsonResponse(w, status, resp)
}

// handleCreateCandidateStream runs the pipeline and streams step progress via SSE
func (s *Server) handleCreateCandidateStream(w http.ResponseWriter, r *http.Request) {
	var req CandidateRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.errResponse(w, r, err)
		return
	}
	if req.Store && s.store == nil {
		s.errResponse(w, r, ErrStoreDisabled)
		return
	}
	in, err := req.toInput()
	if err != nil {
		s.errResponse(w, r, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	log := logger.Ctx(r.Context())

	// both extraction branches report progress concurrently
	var mu sync.Mutex
	opts := req.runOptions()
	opts.OnProgress = func(event pipeline.ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		if err := sse.WriteEvent("step", event); err != nil {
			log.Warn().Err(err).Msg("error writing SSE event")
		}
	}

	resp, err := s.runCandidate(r, &req, in, opts)
	if err != nil {
		sse.WriteError(err.Error())
		return
	}

	mu.Lock()
	defer mu.Unlock()
	if err := sse.WriteEvent("complete", resp); err != nil {
		log.Warn().Err(err).Msg("error writing SSE event")
	}
}

// runCandidate runs the pipeline for one request and stores the result if asked
func (s *Server) runCandidate(r *http.Request, req *CandidateRequest, in pipeline.Input, opts pipeline.RunOptions) (*CandidateResponse, error) {
	ctx := r.Context()
	result, err := s.runner.Run(ctx, in, opts)
	if err != nil {
		return nil, err
	}

	resp := &CandidateResponse{
		Record:      result.Record,
		NeedsReview: scoring.NeedsReview(result.Record, s.reviewThreshold),
	}
	if !req.Store {
		return resp, nil
	}

	input := db.CandidateInput{Record: result.Record, ProfileURL: req.ProfileURL}
	if in.Resume != nil {
		input.ResumeHash = ingestion.NewMetadata(in.Resume.Text, types.SourceResume, ingestion.FormatText).Hash
	}
	if in.LinkedIn != nil {
		input.LinkedInHash = ingestion.NewMetadata(in.LinkedIn.Text, types.SourceLinkedIn, ingestion.FormatText).Hash
	}
	id, err := s.store.SaveCandidate(ctx, input)
	if err != nil {
		return nil, err
	}
	resp.ID = id.String()
	return resp, nil
}

// handleListCandidates lists stored candidates filtered by query parameters
func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errResponse(w, r, ErrStoreDisabled)
		return
	}

	query := r.URL.Query()
	filter := db.ListFilter{Skill: query.Get("skill")}
	if v := query.Get("min_confidence"); v != "" {
		minConfidence, err := strconv.ParseFloat(v, 64)
		if err != nil || minConfidence < 0 || minConfidence > 1 {
			s.errResponse(w, r, &ErrValidation{Field: "min_confidence", Message: "must be a number between 0 and 1"})
			return
		}
		filter.MinConfidence = minConfidence
	}
	if v := query.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			s.errResponse(w, r, &ErrValidation{Field: "limit", Message: "must be a positive integer"})
			return
		}
		filter.Limit = limit
	}

	summaries, err := s.store.ListCandidates(r.Context(), filter)
	if err != nil {
		s.errResponse(w, r, err)
		return
	}
	if summaries == nil {
		summaries = []db.CandidateSummary{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"candidates": summaries,
		"count":      len(summaries),
	})
}

// pathID parses the {id} path value
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: "id", Message: "invalid candidate ID format"}
	}
	return id, nil
}

// handleGetCandidate returns a stored candidate
func (s *Server) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errResponse(w, r, ErrStoreDisabled)
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.errResponse(w, r, err)
		return
	}

	candidate, err := s.store.GetCandidate(r.Context(), id)
	if err != nil {
		s.errResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, candidate)
}

// handleDeleteCandidate removes a stored candidate
func (s *Server) handleDeleteCandidate(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errResponse(w, r, ErrStoreDisabled)
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.errResponse(w, r, err)
		return
	}

	if err := s.store.DeleteCandidate(r.Context(), id); err != nil {
		s.errResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
