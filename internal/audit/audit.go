package audit

import (
	"context"

	"github.com/Atomized-titan/qri/pkg/log"
)

// Audit actions for qri-service.
const (
	ActionGenerate = "qri.generate"
	ActionValidate = "qri.validate"
	ActionVerify   = "qri.verify"
)

// Field constants for audit entries.
const (
	FieldAction = "action"
	FieldResult = "result"
	FieldDetail = "detail"
	FieldCount  = "count"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action, qri, keyID, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldQRI, qri).
		Str(log.FieldKeyID, keyID).
		Msg(msg)
}

// LogResult emits an audit log for a check, recording its outcome and, on
// failure, the reason.
func LogResult(ctx context.Context, action, qri, keyID string, ok bool, detail string) {
	l := log.Ctx(ctx)
	ev := l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldQRI, qri).
		Str(log.FieldKeyID, keyID).
		Bool(FieldResult, ok)
	if detail != "" {
		ev = ev.Str(FieldDetail, detail)
	}
	ev.Msg("qri checked")
}

// LogBatch emits an audit log entry for count identifiers issued together.
func LogBatch(ctx context.Context, action string, count int, keyID, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Int(FieldCount, count).
		Str(log.FieldKeyID, keyID).
		Msg(msg)
}
