package health

import (
	"context"
	"time"
)

const (
	serviceName  = "studyhall"
	version      = "1.0.0"
	checkTimeout = 2 * time.Second
)

// a dependency that can report whether it is reachable
type Checker interface {
	Ping(ctx context.Context) error
}

// adapts a function to Checker
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

type Response struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}

type PingResponse struct {
	Message string `json:"message"`
}
