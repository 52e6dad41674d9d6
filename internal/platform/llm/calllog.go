package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/andreypavlenko/scout/internal/platform/logger"
	"go.uber.org/zap"
)

// Archiver mirrors call records to remote storage.
type Archiver interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) error
}

// CallRecord is the persisted request/response pair for one gateway call.
type CallRecord struct {
	RequestID  string    `json:"request_id"`
	Model      string    `json:"model"`
	Timestamp  time.Time `json:"timestamp"`
	DurationMS int64     `json:"duration_ms"`
	Success    bool      `json:"success"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	Request    *Request  `json:"request"`
	Response   *Response `json:"response,omitempty"`
	Usage      Usage     `json:"usage"`
}

// CallLog writes one JSON file per gateway call into an append-only directory
// and optionally mirrors each record to S3.
type CallLog struct {
	dir      string
	log      *logger.Logger
	archiver Archiver
}

// NewCallLog creates the log directory if needed. A nil archiver disables the
// S3 mirror.
func NewCallLog(dir string, log *logger.Logger, archiver Archiver) (*CallLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create llm log dir: %w", err)
	}
	return &CallLog{dir: dir, log: log, archiver: archiver}, nil
}

// Record persists a call record. Failures are logged, never propagated: the
// call log must not fail the call.
func (cl *CallLog) Record(rec *CallRecord) {
	ts := rec.Timestamp.UTC()
	name := fmt.Sprintf(
		"%s_%06d_%s_%s.json",
		ts.Format("20060102_150405"),
		ts.Nanosecond()/1000,
		rec.Model,
		rec.RequestID,
	)

	body, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		cl.log.Error("failed to encode llm call record", zap.Error(err), zap.String("request_id", rec.RequestID))
		return
	}

	path := filepath.Join(cl.dir, name)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		cl.log.Error("failed to write llm call record", zap.Error(err), zap.String("path", path))
		return
	}

	if cl.archiver != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := cl.archiver.Upload(ctx, "llm-logs/"+name, body, "application/json"); err != nil {
				cl.log.Warn("failed to archive llm call record", zap.Error(err), zap.String("key", name))
			}
		}()
	}
}
