package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr string
	// AdminToken guards the contact routes when non-empty.
	AdminToken      string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	// AuditBuffer > 0 makes audit publishing asynchronous with that capacity.
	AuditBuffer int
	// AuditRetention bounds the in-memory audit trail; <= 0 keeps everything.
	AuditRetention int
	// AtomicUpdates makes a rejected update leave the contact untouched
	// instead of keeping the fields set before the rejected one.
	AtomicUpdates bool
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("CONTACTBOOK_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	shutdownTimeout := 10 * time.Second
	if raw := os.Getenv("CONTACTBOOK_SHUTDOWN_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			shutdownTimeout = d
		}
	}

	auditBuffer := 0
	if raw := os.Getenv("CONTACTBOOK_AUDIT_BUFFER"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			auditBuffer = n
		}
	}

	auditRetention := 10000
	if raw := os.Getenv("CONTACTBOOK_AUDIT_RETENTION"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			auditRetention = n
		}
	}

	atomicUpdates, _ := strconv.ParseBool(os.Getenv("CONTACTBOOK_ATOMIC_UPDATES"))

	return Server{
		Addr:            addr,
		AdminToken:      os.Getenv("CONTACTBOOK_ADMIN_TOKEN"),
		LogLevel:        os.Getenv("LOG_LEVEL"),
		LogFormat:       os.Getenv("LOG_FORMAT"),
		ShutdownTimeout: shutdownTimeout,
		AuditBuffer:     auditBuffer,
		AuditRetention:  auditRetention,
		AtomicUpdates:   atomicUpdates,
	}
}
