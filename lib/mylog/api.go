package mylog

import (
	"context"

	"github.com/MarcGrol/catalogshop/lib/mycontext"
)

type Severity string

const (
	SeverityDebug Severity = "DEBUG"
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

type Logger interface {
	Log(c context.Context, traceLabel string, severity Severity, format string, a ...any)
}

// New returns a logger for the given component. When a google cloud project is configured
// entries are written as structured json.
func New(componentName string) Logger {
	if mycontext.ProjectID() != "" {
		return newGcloudLogger(componentName)
	}
	return newStandardLogger(componentName)
}
