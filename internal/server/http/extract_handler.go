package http

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"scholar/internal/httpclient"
	"scholar/internal/id"
	"scholar/internal/textextract"
)

type extractRequest struct {
	URL string `json:"url" form:"url"`
}

func (s *Server) handleExtract(c *gin.Context) {
	var (
		res textextract.Result
		err error
	)
	if file, header, ferr := c.Request.FormFile("file"); ferr == nil {
		defer func() { _ = file.Close() }()
		data, rerr := httpclient.ReadAllWithLimit(file, s.deps.Server.MaxUploadBytes)
		if rerr != nil {
			s.writeExtractError(c, rerr)
			return
		}
		res, err = s.deps.Extractor.FromBytes(header.Filename, header.Header.Get("Content-Type"), data)
	} else {
		var req extractRequest
		if berr := c.ShouldBind(&req); berr != nil && !errors.Is(berr, io.EOF) {
			errorJSON(c, http.StatusBadRequest, "invalid request body")
			return
		}
		if strings.TrimSpace(req.URL) == "" {
			errorJSON(c, http.StatusBadRequest, "Please provide a file or a url")
			return
		}
		res, err = s.deps.Extractor.FromURL(c.Request.Context(), req.URL)
	}
	if err != nil {
		s.writeExtractError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"text":          res.Text,
		"title":         res.Title,
		"format":        res.Format,
		"source":        res.Source,
		"chars":         res.Chars(),
		"extraction_id": id.NewExtractionID(),
	})
}

func (s *Server) writeExtractError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, textextract.ErrUnsupported):
		errorJSON(c, http.StatusUnsupportedMediaType, err.Error())
	case httpclient.IsResponseTooLarge(err):
		errorJSON(c, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, textextract.ErrInvalidURL):
		errorJSON(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, textextract.ErrEmpty):
		errorJSON(c, http.StatusUnprocessableEntity, err.Error())
	default:
		s.logger.Warn("extraction failed: %v", err)
		errorJSON(c, http.StatusBadGateway, err.Error())
	}
}
