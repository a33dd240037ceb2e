package logger

import (
	"context"
	"io"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process-wide logger. It is a no-op logger until Initialize runs.
var Log = zap.NewNop()

const (
	RequestIDKey    = "request_id"
	RequestIDHeader = "X-Request-ID"
)

type ctxKey struct{}

// Initialize builds Log for the given environment.
func Initialize(env string) (*zap.Logger, error) {
	return InitializeWithWriter(env, nil)
}

// InitializeWithWriter builds Log and, when extra is not nil, tees every entry
// as JSON into it (CloudWatch Logs in deployed environments).
func InitializeWithWriter(env string, extra io.Writer) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if env == "production" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	if extra == nil {
		l, err := cfg.Build()
		if err != nil {
			return nil, err
		}
		Log = l
		return l, nil
	}

	level := zap.NewAtomicLevelAt(cfg.Level.Level())
	console := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg.EncoderConfig), zapcore.AddSync(os.Stdout), level)
	shipped := zapcore.NewCore(zapcore.NewJSONEncoder(cfg.EncoderConfig), zapcore.AddSync(extra), level)

	Log = zap.New(zapcore.NewTee(console, shipped), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	return Log, nil
}

// RequestID reuses an incoming X-Request-ID or mints one, and makes it
// available both on the gin context and on the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Request = c.Request.WithContext(WithRequestID(c.Request.Context(), id))
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func RequestIDFrom(ctx context.Context) string {
	if gc, ok := ctx.(*gin.Context); ok {
		if id := gc.GetString(RequestIDKey); id != "" {
			return id
		}
		ctx = gc.Request.Context()
	}
	if id, ok := ctx.Value(ctxKey{}).(string); ok {
		return id
	}
	return "unknown"
}

// For returns l annotated with the request id carried by ctx.
func For(ctx context.Context, l *zap.Logger) *zap.Logger {
	if l == nil {
		l = Log
	}
	return l.With(zap.String(RequestIDKey, RequestIDFrom(ctx)))
}

func Info(ctx context.Context, msg string, fields ...zap.Field) {
	For(ctx, nil).Info(msg, fields...)
}

func Warn(ctx context.Context, msg string, fields ...zap.Field) {
	For(ctx, nil).Warn(msg, fields...)
}

func Error(ctx context.Context, msg string, err error, fields ...zap.Field) {
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	For(ctx, nil).Error(msg, fields...)
}
