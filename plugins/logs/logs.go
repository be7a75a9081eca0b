// Package logs writes one line at every host severity.
package logs

import (
	"log/slog"

	pdk "github.com/extism/go-pdk"
)

// Result is the plugin output.
type Result struct {
	Lines int `json:"lines"`
}

// Emit logs one line per severity followed by a structured slog record.
func Emit() (Result, error) {
	pdk.Log(pdk.LogDebug, "this is a debug log")
	pdk.Log(pdk.LogInfo, "this is an info log")
	pdk.Log(pdk.LogWarn, "this is a warning log")
	pdk.Log(pdk.LogError, "this is an error log")

	logger := slog.New(pdk.NewLogHandler(pdk.WithLevel(slog.LevelDebug)))
	logger.Info("this is a structured log", "plugin", "logs", "lines", 5)

	return Result{Lines: 5}, nil
}

// Run is the body of the "logs" export.
func Run() int32 {
	return pdk.Export(Emit)
}
