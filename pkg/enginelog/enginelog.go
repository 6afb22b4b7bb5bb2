// Copyright 2026 Unicity Network

// Package enginelog provides the structured logging conventions the engine
// uses for diagnostic output: a thin wrapper over log/slog, following the
// teacher lite client's logging package but trimmed to a library's needs —
// no output/file configuration, since this engine never owns a process's
// stdio, only whatever *slog.Logger its caller hands it.
package enginelog

import (
	"context"
	"log/slog"
)

// Fields are the structured attributes attached to a log record. Engine
// code builds these out of domain identifiers (tokenId, requestId, ...)
// rather than interpolating them into the message string.
type Fields = []slog.Attr

// Nop returns a logger that discards everything, for callers that don't
// want engine diagnostics.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(discard{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// TokenId renders a token id as a short-form log attribute: the full hex
// form is verbose and two tokens rarely need disambiguating beyond a
// prefix in a log line.
func TokenId(hexID string) slog.Attr {
	if len(hexID) > 12 {
		hexID = hexID[:12] + "…"
	}
	return slog.String("token_id", hexID)
}

// WithRequestId returns a child of logger that carries requestIdHex as a
// "request_id" attribute; logger itself is left unchanged. A small helper
// so call sites that pass a logger through several operations don't each
// reconstruct the attribute.
func WithRequestId(logger *slog.Logger, requestIdHex string) *slog.Logger {
	return logger.With(slog.String("request_id", requestIdHex))
}

// LogAggregatorSubmit logs a commitment submission outcome at the
// appropriate level: Info on success, Warn otherwise (the caller still
// decides whether to treat a non-success status as fatal).
func LogAggregatorSubmit(ctx context.Context, logger *slog.Logger, status string, requestIdHex string) {
	level := slog.LevelInfo
	if status != "SUCCESS" {
		level = slog.LevelWarn
	}
	logger.Log(ctx, level, "aggregator commitment submitted", slog.String("status", status), slog.String("request_id", requestIdHex))
}
