package server

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/storetypes"
)

// multipartMemory is the part of a batch form kept in memory; the rest spills to disk.
const multipartMemory = 32 << 20

// URLResponse carries an object URL.
type URLResponse struct {
	URL string `json:"url"`
}

// OutcomeResponse is one batch item result.
type OutcomeResponse struct {
	Key   string `json:"key"`
	URL   string `json:"url,omitempty"`
	Error string `json:"error,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

// BatchResponse is the result of a batch upload.
type BatchResponse struct {
	Outcomes []OutcomeResponse `json:"outcomes"`
	Failed   int               `json:"failed"`
}

// DeleteRequest is the body of a batch delete.
type DeleteRequest struct {
	Keys []string `json:"keys"`
}

func (s *Server) putObject(w http.ResponseWriter, r *http.Request) {
	bucket, key := chi.URLParam(r, "bucket"), chi.URLParam(r, "*")
	body := http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)

	url, err := s.store.Add(r.Context(), bucket, key, body, uploadOptions(r)...)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	Created(w, URLResponse{URL: url})
}

func (s *Server) getObject(w http.ResponseWriter, r *http.Request) {
	bucket, key := chi.URLParam(r, "bucket"), chi.URLParam(r, "*")

	obj, err := s.store.GetObject(r.Context(), bucket, key)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer obj.Body.Close()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = objectstore.DefaultContentType
	}
	w.Header().Set("Content-Type", contentType)
	if obj.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.ContentLength, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, obj.Body); err != nil {
		s.logger.Warn("object stream interrupted",
			zap.String("bucket", bucket),
			zap.String("key", key),
			zap.Error(err))
	}
}

func (s *Server) deleteObject(w http.ResponseWriter, r *http.Request) {
	bucket, key := chi.URLParam(r, "bucket"), chi.URLParam(r, "*")

	if err := s.store.Delete(r.Context(), bucket, key); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteObjects(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")

	var req DeleteRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if err := s.store.DeleteMany(r.Context(), bucket, req.Keys); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) putBatch(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")

	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		BadRequest(w, "invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	items, files, err := formItems(r.MultipartForm)
	defer closeAll(files)
	if err != nil {
		BadRequest(w, "unreadable form file")
		return
	}

	outcome := s.store.AddBatch(r.Context(), bucket, items, uploadOptions(r)...)
	if len(outcome) == 1 && errors.KindOf(outcome[0].Err) == errors.KindBatchLimit {
		s.fail(w, r, outcome[0].Err)
		return
	}

	resp := BatchResponse{Outcomes: make([]OutcomeResponse, 0, len(outcome))}
	for _, o := range outcome {
		item := OutcomeResponse{Key: o.Key, URL: o.URL}
		if o.Err != nil {
			item.Error = o.Err.Error()
			item.Kind = string(errors.KindOf(o.Err))
			resp.Failed++
		}
		resp.Outcomes = append(resp.Outcomes, item)
	}
	OK(w, resp)
}

func (s *Server) objectURL(w http.ResponseWriter, r *http.Request) {
	OK(w, URLResponse{URL: s.store.URL(chi.URLParam(r, "bucket"), chi.URLParam(r, "*"))})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("store operation failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err))
	}
	Failure(w, err)
}

// uploadOptions reads per-request upload settings from the query string.
func uploadOptions(r *http.Request) []storetypes.UploadOption {
	var opts []storetypes.UploadOption
	if acl := r.URL.Query().Get("acl"); acl != "" {
		opts = append(opts, objectstore.WithAccessPolicy(storetypes.AccessPolicy(acl)))
	}
	if ct := r.Header.Get("Content-Type"); ct != "" && r.Method == http.MethodPut {
		opts = append(opts, objectstore.WithContentType(ct))
	}
	return opts
}

// formItems opens every file part of form; the part name is the object key.
func formItems(form *multipart.Form) ([]storetypes.UploadItem, []multipart.File, error) {
	keys := make([]string, 0, len(form.File))
	for key := range form.File {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var items []storetypes.UploadItem
	var files []multipart.File
	for _, key := range keys {
		for _, fh := range form.File[key] {
			f, err := fh.Open()
			if err != nil {
				return nil, files, err
			}
			files = append(files, f)
			items = append(items, storetypes.UploadItem{Key: key, Body: f})
		}
	}
	return items, files, nil
}

func closeAll(files []multipart.File) {
	for _, f := range files {
		_ = f.Close()
	}
}
