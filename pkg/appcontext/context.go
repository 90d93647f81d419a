package appcontext

import (
	"context"

	"github.com/sirupsen/logrus"
)

type contextId int

const (
	commandKeyId contextId = iota
	jobNameKeyId
	archiveNameKeyId
	requestIdKeyId
)

func WithCommand(ctx context.Context, command string) context.Context {
	return context.WithValue(ctx, commandKeyId, command)
}

func WithJobName(ctx context.Context, job string) context.Context {
	return context.WithValue(ctx, jobNameKeyId, job)
}

func WithArchiveName(ctx context.Context, archive string) context.Context {
	return context.WithValue(ctx, archiveNameKeyId, archive)
}

func WithRequestId(ctx context.Context, requestId string) context.Context {
	return context.WithValue(ctx, requestIdKeyId, requestId)
}

func LoggerFromContext(logger logrus.FieldLogger, ctx context.Context) logrus.FieldLogger {
	if ctx == nil {
		return logger
	}

	result := logger

	if ctxCommand, ok := ctx.Value(commandKeyId).(string); ok && ctxCommand != "" {
		result = result.WithField("command", ctxCommand)
	}

	if ctxJobName, ok := ctx.Value(jobNameKeyId).(string); ok && ctxJobName != "" {
		result = result.WithField("job", ctxJobName)
	}

	if ctxArchiveName, ok := ctx.Value(archiveNameKeyId).(string); ok && ctxArchiveName != "" {
		result = result.WithField("archive", ctxArchiveName)
	}

	if ctxRequestId, ok := ctx.Value(requestIdKeyId).(string); ok && ctxRequestId != "" {
		result = result.WithField("request_id", ctxRequestId)
	}

	return result
}
