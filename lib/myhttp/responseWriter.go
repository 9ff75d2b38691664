package myhttp

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"log"
	"net/http"

	"github.com/MarcGrol/catalogshop/lib/myerrors"
	"github.com/MarcGrol/catalogshop/lib/mylog"
)

type ResponseWriter interface {
	WriteError(c context.Context, w http.ResponseWriter, errorCode int, err error)
	Write(c context.Context, w http.ResponseWriter, httpStatus int, resp interface{})
	// WriteErrorPage renders the error page, or the json error when the client asked for json
	WriteErrorPage(c context.Context, w http.ResponseWriter, r *http.Request, errorCode int, err error)
	// WritePage renders the template with data, or data as json when the client asked for json
	WritePage(c context.Context, w http.ResponseWriter, r *http.Request, httpStatus int, tmpl *template.Template, data interface{})
}

type errorResponse struct {
	ErrorCode int
	Message   string
}

type SuccessResponse struct {
	Message string
}

//go:embed templates
var templateFolder embed.FS
var errorPageTemplate *template.Template

func init() {
	errorPageTemplate = template.Must(template.ParseFS(templateFolder, "templates/error.html"))
}

func NewWriter(logger mylog.Logger) ResponseWriter {
	return &responseWriter{
		logger: logger,
	}
}

type responseWriter struct {
	logger mylog.Logger
}

func (rw responseWriter) WriteError(c context.Context, w http.ResponseWriter, errorCode int, err error) {
	httpStatus := myerrors.GetHTTPStatus(err)
	rw.logger.Log(c, "", mylog.SeverityWarn, "Error response: http-status:%d, error-code:%d, error-msg:%s", httpStatus, errorCode, err)
	rw.write(w, httpStatus, errorResponse{
		ErrorCode: errorCode,
		Message:   err.Error(),
	})
}

func (rw responseWriter) Write(c context.Context, w http.ResponseWriter, httpStatus int, resp interface{}) {
	rw.logger.Log(c, "", mylog.SeverityInfo, "Success response: http-status:%d", httpStatus)
	rw.write(w, httpStatus, resp)
}

func (rw responseWriter) WriteErrorPage(c context.Context, w http.ResponseWriter, r *http.Request, errorCode int, err error) {
	if WantsJSON(r) {
		rw.WriteError(c, w, errorCode, err)
		return
	}

	httpStatus := myerrors.GetHTTPStatus(err)
	rw.logger.Log(c, "", mylog.SeverityWarn, "Error page: http-status:%d, error-code:%d, error-msg:%s", httpStatus, errorCode, err)
	rw.render(c, w, httpStatus, errorPageTemplate, struct {
		HTTPStatus int
		StatusText string
		ErrorCode  int
		Message    string
	}{
		HTTPStatus: httpStatus,
		StatusText: http.StatusText(httpStatus),
		ErrorCode:  errorCode,
		Message:    err.Error(),
	})
}

func (rw responseWriter) WritePage(c context.Context, w http.ResponseWriter, r *http.Request, httpStatus int, tmpl *template.Template, data interface{}) {
	if WantsJSON(r) {
		rw.Write(c, w, httpStatus, data)
		return
	}

	var buf bytes.Buffer
	err := tmpl.Execute(&buf, data)
	if err != nil {
		rw.WriteErrorPage(c, w, r, 0, myerrors.NewInternalError(err))
		return
	}

	rw.logger.Log(c, "", mylog.SeverityInfo, "Page response: http-status:%d", httpStatus)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(httpStatus)
	_, err = buf.WriteTo(w)
	if err != nil {
		log.Printf("Error writing page response: %s", err)
	}
}

// render is used for the error page itself, so it cannot fall back on the error page
func (rw responseWriter) render(c context.Context, w http.ResponseWriter, httpStatus int, tmpl *template.Template, data interface{}) {
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, data)
	if err != nil {
		rw.logger.Log(c, "", mylog.SeverityError, "Error rendering error page: %s", err)
		http.Error(w, http.StatusText(httpStatus), httpStatus)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(httpStatus)
	_, err = buf.WriteTo(w)
	if err != nil {
		log.Printf("Error writing error page: %s", err)
	}
}

func (rw responseWriter) write(w http.ResponseWriter, httpStatus int, resp interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "\t")
	err := encoder.Encode(resp)
	if err != nil {
		log.Printf("Error writing response: %s", err)
		return
	}
}
