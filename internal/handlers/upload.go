package handlers

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rentkart/rentkart/internal/logging"
)

// UploadHandler relays the uploaded file to the external image host and
// returns the host's JSON response untouched.
type UploadHandler struct {
	UploadURL string
	Client    *http.Client
}

func NewUploadHandler(uploadURL string) *UploadHandler {
	return &UploadHandler{
		UploadURL: uploadURL,
		Client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (h *UploadHandler) Upload(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "upload.upload")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		l.Warn("upload_error", "status", 400, "reason", "missing file", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "file required")
	}

	src, err := fileHeader.Open()
	if err != nil {
		l.Error("upload_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot read file")
	}
	defer src.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", fileHeader.Filename)
	if err != nil {
		l.Error("upload_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot build upload")
	}
	if _, err := io.Copy(part, src); err != nil {
		l.Error("upload_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot build upload")
	}
	if err := writer.Close(); err != nil {
		l.Error("upload_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot build upload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.UploadURL, &body)
	if err != nil {
		l.Error("upload_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot build upload")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := h.Client.Do(req)
	if err != nil {
		l.Error("upload_failed", "status", 502, "reason", "image host unreachable", "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "image host unreachable")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		l.Error("upload_failed", "status", 502, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "image host error")
	}
	if resp.StatusCode >= 400 {
		l.Warn("upload_failed", "status", 502, "reason", "image host rejected upload", "host_status", resp.StatusCode)
		return echo.NewHTTPError(http.StatusBadGateway, "image host rejected upload")
	}

	l.Info("upload_success", "bytes", fileHeader.Size)
	return c.JSONBlob(http.StatusOK, payload)
}
