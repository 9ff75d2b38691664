package mycontext

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// projectID is set once at startup, before any request is served.
var projectID string

// SetProjectID configures the google cloud project that traces and structured logging refer to.
func SetProjectID(id string) {
	projectID = id
}

func ProjectID() string {
	return projectID
}

// CtxTraceContext is a context key for the trace context (used by mylog)
type CtxTraceContext struct{}

// ContextFromHTTPRequest derives the context for a request and attaches the cloud trace, if any.
func ContextFromHTTPRequest(r *http.Request) context.Context {
	return WithTrace(r.Context(), traceFromHeader(projectID, r.Header.Get("X-Cloud-Trace-Context")))
}

func WithTrace(c context.Context, trace string) context.Context {
	return context.WithValue(c, CtxTraceContext{}, trace)
}

func TraceFromContext(c context.Context) string {
	trace, ok := c.Value(CtxTraceContext{}).(string)
	if !ok {
		return ""
	}
	return trace
}

// Header format is "TRACE_ID/SPAN_ID;o=TRACE_TRUE"
func traceFromHeader(projectID string, traceContext string) string {
	traceParts := strings.Split(traceContext, "/")
	if len(traceParts) == 0 || len(traceParts[0]) == 0 {
		return ""
	}
	return fmt.Sprintf("projects/%s/traces/%s", projectID, traceParts[0])
}
