// Package logger is the client side of the logger service.
package logger

import (
	"calcpad/calcos/kernel"
	"calcpad/calcos/proto"
)

// Log sends a log line to the logger service.
//
// The call is best-effort: it may drop on queue full. Lines longer than a
// message are truncated.
func Log(ctx *kernel.Context, logCap kernel.Capability, line string) kernel.SendResult {
	if ctx == nil {
		return kernel.SendErrInvalidFromCap
	}
	return ctx.SendToCapResult(logCap, uint16(proto.MsgLogLine), payload(line), kernel.Capability{})
}

// LogRetry is Log, but waits up to limit ticks for queue space.
func LogRetry(ctx *kernel.Context, logCap kernel.Capability, line string, limit int) kernel.SendResult {
	if ctx == nil {
		return kernel.SendErrInvalidFromCap
	}
	return ctx.SendToCapRetry(logCap, uint16(proto.MsgLogLine), payload(line), kernel.Capability{}, limit)
}

func payload(line string) []byte {
	b := []byte(line)
	if len(b) > kernel.MaxMessageBytes {
		b = b[:kernel.MaxMessageBytes]
	}
	return proto.LogLinePayload(b)
}
