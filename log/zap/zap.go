// Package zap adapts a *zap.Logger to cacheseq.Logger.
package zap

import (
	"github.com/unkn0wn-root/cacheseq"
	"go.uber.org/zap"
)

type ZapLogger struct{ L *zap.Logger }

var _ cacheseq.Logger = ZapLogger{}

// New names the logger "cacheseq" and skips the adapter frame in caller info.
func New(l *zap.Logger) ZapLogger {
	return ZapLogger{L: l.Named("cacheseq").WithOptions(zap.AddCallerSkip(1))}
}

func (z ZapLogger) Debug(msg string, f cacheseq.Fields) { z.L.Debug(msg, zf(f)...) }
func (z ZapLogger) Info(msg string, f cacheseq.Fields)  { z.L.Info(msg, zf(f)...) }
func (z ZapLogger) Warn(msg string, f cacheseq.Fields)  { z.L.Warn(msg, zf(f)...) }
func (z ZapLogger) Error(msg string, f cacheseq.Fields) { z.L.Error(msg, zf(f)...) }

func zf(f cacheseq.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(f))
	for k, v := range f {
		if err, ok := v.(error); ok && k == "err" {
			out = append(out, zap.Error(err))
			continue
		}
		out = append(out, zap.Any(k, v))
	}
	return out
}
