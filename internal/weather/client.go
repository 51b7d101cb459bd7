package weather

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/drobeapp/drobe-backend/pkg/config"
	pkgerrors "github.com/drobeapp/drobe-backend/pkg/errors"
	"github.com/drobeapp/drobe-backend/pkg/logger"
)

const failureSentinel = "-1"

// Reading is the parsed output of the weather process. Temp stays a string
// because the upstream contract does not pin a numeric format.
type Reading struct {
	Temp        string `json:"temp"`
	Description string `json:"weather"`
}

// Client fetches the current weather reading from the upstream process.
type Client interface {
	Fetch(ctx context.Context) (*Reading, error)
}

type scriptClient struct {
	command []string
	timeout time.Duration
	logg    *logger.Logger
}

// NewScriptClient builds a client that shells out to the configured command.
func NewScriptClient(cfg config.ScriptsConfig, logg *logger.Logger) (Client, error) {
	command := normalizeCommand(cfg.WeatherCommand)
	if len(command) == 0 {
		return nil, fmt.Errorf("weather command is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &scriptClient{
		command: command,
		timeout: timeout,
		logg:    logg,
	}, nil
}

// Fetch runs the process once and parses its stdout. The contract is a single
// "temp,description" line; "-1" in either field marks an upstream failure.
func (c *scriptClient) Fetch(ctx context.Context) (*Reading, error) {
	output, err := runScript(ctx, c.command, c.timeout, c.logg)
	if err != nil {
		return nil, err
	}

	return parseReading(output)
}

func parseReading(output string) (*Reading, error) {
	line := strings.TrimSpace(output)
	parts := strings.SplitN(line, ",", 2)
	if len(parts) != 2 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "malformed weather output")
	}

	temp := strings.TrimSpace(parts[0])
	description := strings.TrimSpace(parts[1])
	if temp == failureSentinel || description == failureSentinel {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "weather unavailable")
	}
	if temp == "" || description == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "malformed weather output")
	}

	return &Reading{Temp: temp, Description: description}, nil
}

func runScript(ctx context.Context, command []string, timeout time.Duration, logg *logger.Logger) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if logg != nil {
			logCtx := logg.WithFields(ctx, map[string]any{
				"command": command[0],
				"stderr":  strings.TrimSpace(stderr.String()),
			})
			logg.Warn(logCtx, "upstream script failed")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "run upstream script")
	}

	return stdout.String(), nil
}

func normalizeCommand(raw []string) []string {
	var command []string
	for _, part := range raw {
		if part = strings.TrimSpace(part); part != "" {
			command = append(command, part)
		}
	}
	return command
}
