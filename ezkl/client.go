package ezkl

// Package ezkl wraps the external proving engine binary. One method per
// pipeline step, each a blocking invocation. The client never interprets
// artifact contents; it only translates exit status and checks that promised
// output files exist afterwards.

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/rs/zerolog"
)

const installHint = "install it with: pip install ezkl"

// stderr beyond this is truncated from the front, keeping the tail where the
// engine prints its actual error.
const stderrExcerptLimit = 2048

// Client invokes the ezkl binary synchronously.
type Client struct {
	bin     string
	timeout time.Duration
	log     zerolog.Logger
}

// NewClient resolves the engine binary through PATH. A zero timeout disables
// the per-invocation deadline.
func NewClient(bin string, timeout time.Duration, log zerolog.Logger) (*Client, error) {
	if bin == "" {
		bin = "ezkl"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("proving engine %q not found in PATH (%s): %w", bin, installHint, err)
	}
	return &Client{
		bin:     path,
		timeout: timeout,
		log:     log.With().Str("component", "ezkl").Logger(),
	}, nil
}

func (c *Client) GenSettings(ctx context.Context, model, settings string) error {
	return c.run(ctx, "gen-settings",
		[]string{"gen-settings", "-M", model, "-O", settings},
		settings)
}

func (c *Client) CalibrateSettings(ctx context.Context, model, data, settings string) error {
	return c.run(ctx, "calibrate-settings",
		[]string{"calibrate-settings", "-M", model, "-D", data, "-O", settings},
		settings)
}

func (c *Client) CompileCircuit(ctx context.Context, model, settings, compiled string) error {
	return c.run(ctx, "compile-circuit",
		[]string{"compile-circuit", "-M", model, "-S", settings, "--compiled-circuit", compiled},
		compiled)
}

func (c *Client) GetSRS(ctx context.Context, settings, srs string) error {
	return c.run(ctx, "get-srs",
		[]string{"get-srs", "--settings-path", settings, "--srs-path", srs},
		srs)
}

func (c *Client) Setup(ctx context.Context, compiled, srs, pk, vk string) error {
	return c.run(ctx, "setup",
		[]string{"setup", "-M", compiled, "--srs-path", srs, "--pk-path", pk, "--vk-path", vk},
		pk, vk)
}

func (c *Client) GenWitness(ctx context.Context, data, compiled, witness string) error {
	return c.run(ctx, "gen-witness",
		[]string{"gen-witness", "-D", data, "-M", compiled, "-O", witness},
		witness)
}

func (c *Client) Prove(ctx context.Context, witness, compiled, pk, srs, proof string) error {
	return c.run(ctx, "prove",
		[]string{"prove", "--witness", witness, "--compiled-circuit", compiled,
			"--pk-path", pk, "--srs-path", srs, "--proof-path", proof},
		proof)
}

func (c *Client) Verify(ctx context.Context, proof, vk, srs, settings string) error {
	return c.run(ctx, "verify",
		[]string{"verify", "--proof-path", proof, "--vk-path", vk,
			"--srs-path", srs, "--settings-path", settings})
}

func (c *Client) CreateEVMVerifier(ctx context.Context, settings, vk, srs, solPath string) error {
	return c.run(ctx, "create-evm-verifier",
		[]string{"create-evm-verifier", "--settings-path", settings, "--vk-path", vk,
			"--srs-path", srs, "--sol-code-path", solPath},
		solPath)
}

func (c *Client) EncodeCalldata(ctx context.Context, proof, calldata string) error {
	return c.run(ctx, "encode-evm-calldata",
		[]string{"encode-evm-calldata", "--proof-path", proof, "--calldata-path", calldata},
		calldata)
}

// run executes one engine step, blocking until it exits. outputs are the
// files the step must have produced on success.
func (c *Client) run(ctx context.Context, stage string, args []string, outputs ...string) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	c.log.Debug().Str("stage", stage).Strs("args", args).Msg("invoking engine")
	start := time.Now()

	cmd := exec.CommandContext(ctx, c.bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return &ToolError{Stage: stage, ExitCode: code, Stderr: excerpt(stderr.Bytes())}
	}

	var missing []string
	for _, out := range outputs {
		if _, err := os.Stat(out); err != nil {
			missing = append(missing, out)
		}
	}
	if len(missing) > 0 {
		return &OutputError{Stage: stage, Missing: missing}
	}

	c.log.Debug().Str("stage", stage).Dur("elapsed", time.Since(start)).Msg("engine step complete")
	return nil
}

func excerpt(b []byte) string {
	b = bytes.TrimSpace(b)
	if len(b) > stderrExcerptLimit {
		b = b[len(b)-stderrExcerptLimit:]
	}
	return string(b)
}
