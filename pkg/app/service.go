package app

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/kardianos/service"
)

// ServiceName is the OS service name used by install and control actions.
const ServiceName = "ghinline"

// ServiceActions lists the accepted ControlService actions.
var ServiceActions = append([]string{"run", "status"}, service.ControlAction[:]...)

// program adapts RunContext to the service manager's Start/Stop calls.
type program struct {
	params RunParams
	cancel context.CancelFunc
	done   chan error
}

func (p *program) Start(_ service.Service) error {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan error, 1)
	go func() { p.done <- RunContext(ctx, p.params) }()
	return nil
}

func (p *program) Stop(_ service.Service) error {
	if p.cancel == nil {
		return nil
	}
	p.cancel()
	return <-p.done
}

// serviceArguments returns the command line the service manager runs.
// A relative config path is made absolute since services do not start in
// the caller's working directory.
func serviceArguments(params RunParams) ([]string, error) {
	args := []string{"service", "run"}
	if params.ConfigPath != "" {
		abs, err := filepath.Abs(params.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("service: resolving config path: %w", err)
		}
		args = append(args, "--config", abs)
	}
	if params.LogLevel != "" {
		args = append(args, "--log-level", params.LogLevel)
	}
	return args, nil
}

// NewService builds the OS service definition for the bot.
func NewService(params RunParams) (service.Service, error) {
	args, err := serviceArguments(params)
	if err != nil {
		return nil, err
	}
	return service.New(&program{params: params}, &service.Config{
		Name:        ServiceName,
		DisplayName: "GitHub inline bot",
		Description: "Answers Telegram inline queries with GitHub repositories.",
		Arguments:   args,
	})
}

// ControlService performs action on the OS service. "run" blocks and runs
// the bot under the service manager; "status" returns a readable state.
func ControlService(params RunParams, action string) (string, error) {
	if !slices.Contains(ServiceActions, action) {
		return "", fmt.Errorf("service: unknown action %q (valid: %v)", action, ServiceActions)
	}
	svc, err := NewService(params)
	if err != nil {
		return "", err
	}

	switch action {
	case "run":
		return "", svc.Run()
	case "status":
		st, err := svc.Status()
		if err != nil {
			return "", fmt.Errorf("service: status: %w", err)
		}
		return statusText(st), nil
	default:
		if err := service.Control(svc, action); err != nil {
			return "", fmt.Errorf("service: %s: %w", action, err)
		}
		return fmt.Sprintf("service %s: %s done", ServiceName, action), nil
	}
}

func statusText(st service.Status) string {
	switch st {
	case service.StatusRunning:
		return "running"
	case service.StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
