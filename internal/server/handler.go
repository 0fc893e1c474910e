package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jekabs-s/urlookup/internal/engine"
	"github.com/jekabs-s/urlookup/internal/logging"
	"github.com/jekabs-s/urlookup/internal/spreadsheet"
)

// UploadField is the multipart form field carrying the input workbook.
const UploadField = "file"

// Summary headers set on a successful upload response.
const (
	HeaderNames     = "X-Lookup-Names"
	HeaderRecords   = "X-Lookup-Records"
	HeaderExhausted = "X-Lookup-Exhausted"
	HeaderRejected  = "X-Lookup-Rejected"
)

// Runner runs a batch lookup.
type Runner interface {
	Run(ctx context.Context, names []string) (*engine.ResultSet, error)
}

// Handler serves the upload endpoint.
type Handler struct {
	runner         Runner
	maxUploadBytes int64
}

// NewHandler creates an upload handler. Request bodies above maxUploadBytes
// are refused.
func NewHandler(runner Runner, maxUploadBytes int64) *Handler {
	return &Handler{runner: runner, maxUploadBytes: maxUploadBytes}
}

// Register mounts the upload endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/", h.HandleUpload)
}

// HandleUpload handles POST / with a multipart workbook under the "file" field
// and responds with the enriched workbook as an attachment.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logging.ComponentLogger(*logging.FromContext(ctx), "server")

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	file, _, err := r.FormFile(UploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "upload too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, `missing upload field "file"`, http.StatusBadRequest)
		return
	}
	defer file.Close()

	names, err := spreadsheet.ReadEntityNames(file)
	if err != nil {
		log.Warn().Ctx(ctx).Err(err).Msg("rejected upload")
		if errors.Is(err, spreadsheet.ErrMissingColumn) {
			http.Error(w, `The uploaded file is incorrectly formatted. Please make sure it has only one column named "entity_name".`,
				http.StatusBadRequest)
			return
		}
		http.Error(w, "the uploaded file is not a readable xlsx workbook", http.StatusBadRequest)
		return
	}

	rs, err := h.runner.Run(ctx, names)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Msg("lookup run failed")
		http.Error(w, "lookup failed", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err = spreadsheet.WriteRecords(&buf, rs.Records); err != nil {
		log.Error().Ctx(ctx).Err(err).Msg("writing workbook failed")
		http.Error(w, "could not build workbook", http.StatusInternalServerError)
		return
	}

	hdr := w.Header()
	hdr.Set("Content-Type", spreadsheet.ContentType)
	hdr.Set("Content-Disposition", "attachment; filename="+spreadsheet.OutputFilename)
	hdr.Set("Content-Length", strconv.Itoa(buf.Len()))
	hdr.Set(HeaderNames, strconv.Itoa(rs.Summary.Names))
	hdr.Set(HeaderRecords, strconv.Itoa(rs.Summary.Records))
	hdr.Set(HeaderExhausted, strconv.Itoa(rs.Summary.Exhausted))
	hdr.Set(HeaderRejected, strconv.Itoa(rs.Summary.Rejected))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
