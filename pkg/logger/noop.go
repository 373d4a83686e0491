package logger

import (
	"context"

	"github.com/narwhalmedia/classifieds/pkg/interfaces"
)

// NoopLogger discards everything. Tests use it.
type NoopLogger struct{}

var _ interfaces.Logger = NoopLogger{}

// NewNoop returns a logger that discards everything.
func NewNoop() interfaces.Logger {
	return NoopLogger{}
}

func (NoopLogger) Debug(string, ...interfaces.Field) {}
func (NoopLogger) Info(string, ...interfaces.Field)  {}
func (NoopLogger) Warn(string, ...interfaces.Field)  {}
func (NoopLogger) Error(string, ...interfaces.Field) {}

// Fatal does not exit, so code under test keeps running.
func (NoopLogger) Fatal(string, ...interfaces.Field) {}

func (n NoopLogger) WithContext(context.Context) interfaces.Logger { return n }

func (n NoopLogger) WithFields(...interfaces.Field) interfaces.Logger { return n }
