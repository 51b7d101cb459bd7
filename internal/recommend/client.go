package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/drobeapp/drobe-backend/pkg/config"
	pkgerrors "github.com/drobeapp/drobe-backend/pkg/errors"
	"github.com/drobeapp/drobe-backend/pkg/logger"
)

// Client fetches outfit recommendations from the upstream process. The JSON
// document is validated and passed through untouched.
type Client interface {
	Fetch(ctx context.Context) (json.RawMessage, error)
}

type scriptClient struct {
	command []string
	timeout time.Duration
	logg    *logger.Logger
}

// NewScriptClient builds a client that shells out to the configured command.
func NewScriptClient(cfg config.ScriptsConfig, logg *logger.Logger) (Client, error) {
	command := normalizeCommand(cfg.RecommendCommand)
	if len(command) == 0 {
		return nil, fmt.Errorf("recommend command is required")
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

func (c *scriptClient) Fetch(ctx context.Context) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.command[0], c.command[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if c.logg != nil {
			logCtx := c.logg.WithFields(ctx, map[string]any{
				"command": c.command[0],
				"stderr":  strings.TrimSpace(stderr.String()),
			})
			c.logg.Warn(logCtx, "upstream script failed")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "run upstream script")
	}

	return parseDocument(stdout.Bytes())
}

func parseDocument(output []byte) (json.RawMessage, error) {
	doc := bytes.TrimSpace(output)
	if len(doc) == 0 || !json.Valid(doc) {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "malformed recommendation output")
	}
	return json.RawMessage(doc), nil
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
