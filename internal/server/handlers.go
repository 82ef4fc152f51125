package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/labstack/echo/v4"

	"llmjobs/internal/translator"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to temporary files.
const multipartMemory = 8 << 20

var endpointList = []struct {
	name  string
	route string
}{
	{name: "create_message", route: "POST /messages"},
	{name: "create_job", route: "POST /job"},
	{name: "get_all_jobs", route: "GET /jobs"},
	{name: "get_job_by_id", route: "GET /jobs/{job_id}"},
	{name: "list_models", route: "GET /models"},
	{name: "health", route: "GET /health"},
	{name: "metrics", route: "GET /metrics"},
}

type rootResponse struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

func (s *Server) handleRoot(c echo.Context) error {
	endpoints := make(map[string]string, len(endpointList))
	for _, ep := range endpointList {
		endpoints[ep.name] = ep.route
	}
	return c.JSON(http.StatusOK, rootResponse{
		Message:   "Welcome to the AI Message API",
		Version:   Version,
		Endpoints: endpoints,
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateMessage(c echo.Context) error {
	in, err := s.readMessageInput(c)
	if err != nil {
		return err
	}

	job, err := s.dispatcher.CreateMessage(c.Request().Context(), in)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, job)
}

func (s *Server) handleListJobs(c echo.Context) error {
	return c.JSON(http.StatusOK, s.dispatcher.ListJobs())
}

func (s *Server) handleGetJob(c echo.Context) error {
	id, err := url.PathUnescape(c.Param("id"))
	if err != nil {
		return requestError{Status: http.StatusBadRequest, Detail: fmt.Sprintf("invalid job id: %v", err)}
	}

	job, err := s.dispatcher.GetJob(id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, job)
}

func (s *Server) handleListModels(c echo.Context) error {
	descriptors, err := s.dispatcher.ListModels(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, descriptors)
}

type messageBody struct {
	Content string `json:"content"`
	Prompt  string `json:"prompt"`
	Model   string `json:"model"`
}

// readMessageInput accepts a JSON body, a multipart form with optional image
// files, or a urlencoded form.
func (s *Server) readMessageInput(c echo.Context) (translator.MessageInput, error) {
	req := c.Request()
	req.Body = http.MaxBytesReader(c.Response(), req.Body, s.cfg.MaxUploadBytes)

	contentType := req.Header.Get(echo.HeaderContentType)
	switch {
	case strings.HasPrefix(contentType, echo.MIMEApplicationJSON):
		var body messageBody
		if err := decodeRequestBody(req.Body, &body); err != nil {
			return translator.MessageInput{}, err
		}
		return translator.MessageInput{
			Content: firstNonEmpty(body.Content, body.Prompt),
			Model:   body.Model,
		}, nil

	case strings.HasPrefix(contentType, echo.MIMEMultipartForm):
		if err := req.ParseMultipartForm(multipartMemory); err != nil {
			return translator.MessageInput{}, formError(err)
		}
		form := req.MultipartForm
		in := translator.MessageInput{
			Content: firstNonEmpty(firstValue(form.Value, "content"), firstValue(form.Value, "prompt")),
			Model:   firstValue(form.Value, "model"),
		}
		for _, field := range []string{"image", "images"} {
			for _, fh := range form.File[field] {
				if fh.Filename == "" && fh.Size == 0 {
					continue
				}
				img, err := readUpload(fh)
				if err != nil {
					return translator.MessageInput{}, err
				}
				in.Images = append(in.Images, img)
			}
		}
		return in, nil

	default:
		if err := req.ParseForm(); err != nil {
			return translator.MessageInput{}, formError(err)
		}
		return translator.MessageInput{
			Content: firstNonEmpty(req.PostForm.Get("content"), req.PostForm.Get("prompt")),
			Model:   req.PostForm.Get("model"),
		}, nil
	}
}

func readUpload(fh *multipart.FileHeader) (translator.Image, error) {
	f, err := fh.Open()
	if err != nil {
		return translator.Image{}, fmt.Errorf("open upload %q: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return translator.Image{}, fmt.Errorf("read upload %q: %w", fh.Filename, err)
	}

	return translator.Image{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Data:        data,
	}, nil
}

func decodeRequestBody[T any](body io.Reader, target *T) error {
	decoder := json.NewDecoder(body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return requestError{Status: http.StatusUnprocessableEntity, Detail: "request body is required"}
		}
		if tooLarge := asMaxBytesError(err); tooLarge != nil {
			return tooLarge
		}
		return requestError{Status: http.StatusUnprocessableEntity, Detail: fmt.Sprintf("invalid JSON payload: %v", err)}
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return requestError{Status: http.StatusUnprocessableEntity, Detail: "request body must contain a single JSON object"}
	}
	return nil
}

func formError(err error) error {
	if tooLarge := asMaxBytesError(err); tooLarge != nil {
		return tooLarge
	}
	return requestError{Status: http.StatusUnprocessableEntity, Detail: fmt.Sprintf("invalid form payload: %v", err)}
}

func asMaxBytesError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return requestError{
			Status: http.StatusRequestEntityTooLarge,
			Detail: fmt.Sprintf("request body exceeds %s", humanize.IBytes(uint64(maxErr.Limit))),
		}
	}
	return nil
}

func firstValue(values map[string][]string, key string) string {
	if v := values[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
