package logging

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-Id"
)

var correlationCounter uint64

// NewRunID identifies one daemon process in logs and in /status.
func NewRunID() string {
	return uuid.NewString()
}

// NewTickID returns a short, ordered id for one poll tick.
func NewTickID() string {
	return newCorrelationID("tick")
}

func NewOperationID() string {
	return newCorrelationID("op")
}

func NewRequestID() string {
	return newCorrelationID("req")
}

func EnsureRequestID(existing string) string {
	trimmed := strings.TrimSpace(existing)
	if trimmed != "" {
		return trimmed
	}

	return NewRequestID()
}

func newCorrelationID(prefix string) string {
	counter := atomic.AddUint64(&correlationCounter, 1)
	ts := time.Now().UTC().UnixMilli()
	return fmt.Sprintf("%s-%s-%s", prefix, strconv.FormatInt(ts, 36), strconv.FormatUint(counter, 36))
}
