package audit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ZapLogger writes audit entries to a structured log. Used when no database is configured.
type ZapLogger struct {
	logger *zap.Logger
}

// NewZapLogger constructs a ZapLogger.
func NewZapLogger(logger *zap.Logger) *ZapLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapLogger{logger: logger}
}

// Log writes an audit entry.
func (l *ZapLogger) Log(_ context.Context, entry Entry) error {
	entry = Prepare(entry, time.Now())
	l.logger.Info("audit",
		zap.String("id", entry.ID),
		zap.Int64("tenant_id", entry.TenantID),
		zap.String("action", entry.Action),
		zap.String("resource_type", entry.ResourceType),
		zap.String("resource_id", entry.ResourceID),
		zap.Int64("customer_id", entry.CustomerID),
		zap.ByteString("metadata", entry.Metadata),
		zap.String("ip", entry.IP),
		zap.String("request_id", entry.RequestID),
	)
	return nil
}

// MemoryLogger keeps entries in memory.
type MemoryLogger struct {
	mu      sync.Mutex
	entries []Entry
}

// Log records an entry.
func (l *MemoryLogger) Log(_ context.Context, entry Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Prepare(entry, time.Now()))
	return nil
}

// Entries returns a copy of recorded entries.
func (l *MemoryLogger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}
