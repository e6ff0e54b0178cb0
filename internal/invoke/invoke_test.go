// SPDX-License-Identifier: MPL-2.0

package invoke

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"ecoreg-cli/internal/config"
	"ecoreg-cli/internal/discovery"
	"ecoreg-cli/internal/issue"
	"ecoreg-cli/internal/preflight"
	"ecoreg-cli/pkg/manifest"
)

func testRunner(name string, ep manifest.Entrypoint, requiredEnv ...string) *preflight.ExecutableRunner {
	return &preflight.ExecutableRunner{
		Module: &discovery.DiscoveredModule{
			Name: name,
			Manifest: &manifest.Manifest{
				Name:        manifest.ModuleName(name),
				Version:     "1.0.0",
				Entrypoint:  ep,
				RequiredEnv: requiredEnv,
			},
			Status: discovery.StatusValid,
		},
		Executable: true,
	}
}

func testInvoker() *Invoker {
	return NewInvoker(config.DefaultConfig(), nil)
}

func TestInvokeCapturesBothStreams(t *testing.T) {
	runner := testRunner("echo-runner", manifest.Entrypoint{
		Command: "sh",
		Args:    []string{"-c", "echo from-stdout; echo from-stderr 1>&2"},
	})

	res := testInvoker().Invoke(context.Background(), runner, Options{})
	if res.Error != nil {
		t.Fatalf("Invoke() error: %v", res.Error)
	}
	if res.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0 (stderr: %s)", res.ExitCode, res.Stderr)
	}
	if !strings.Contains(res.Stdout, "from-stdout") {
		t.Errorf("Stdout = %q, want it to contain %q", res.Stdout, "from-stdout")
	}
	if !strings.Contains(res.Stderr, "from-stderr") {
		t.Errorf("Stderr = %q, want it to contain %q", res.Stderr, "from-stderr")
	}
	if res.Duration <= 0 {
		t.Error("Duration is zero")
	}
	if res.ArtifactPath == "" {
		t.Error("ArtifactPath is empty")
	}
}

func TestInvokeWritesInputPayload(t *testing.T) {
	// The injected --input flag lands in $2 with sh -c; the script copies the
	// payload file to stdout.
	runner := testRunner("input-runner", manifest.Entrypoint{
		Command: "sh",
		Args:    []string{"-c", `cat "$2"`, "ecoreg-test"},
	})

	res := testInvoker().Invoke(context.Background(), runner, Options{Input: []byte(`{"window":"24h"}`)})
	if res.Error != nil {
		t.Fatalf("Invoke() error: %v", res.Error)
	}
	if !strings.Contains(res.Stdout, `"window":"24h"`) {
		t.Errorf("Stdout = %q, want the serialized input payload", res.Stdout)
	}
}

func TestInvokeRedactsSecrets(t *testing.T) {
	t.Setenv("ECOREG_TEST_SECRET", "s3cr3t-value")

	cfg := config.DefaultConfig()
	cfg.Redact = []string{"extra-secret"}
	inv := NewInvoker(cfg, nil)

	runner := testRunner("leaky-runner", manifest.Entrypoint{
		Command: "sh",
		Args:    []string{"-c", "echo token=$ECOREG_TEST_SECRET; echo extra-secret 1>&2"},
	}, "ECOREG_TEST_SECRET")

	res := inv.Invoke(context.Background(), runner, Options{})
	if res.Error != nil {
		t.Fatalf("Invoke() error: %v", res.Error)
	}
	if strings.Contains(res.Stdout, "s3cr3t-value") {
		t.Errorf("Stdout = %q, secret leaked", res.Stdout)
	}
	if !strings.Contains(res.Stdout, Mask) {
		t.Errorf("Stdout = %q, want the redaction mask", res.Stdout)
	}
	if strings.Contains(res.Stderr, "extra-secret") {
		t.Errorf("Stderr = %q, configured redact value leaked", res.Stderr)
	}
}

func TestInvokeNonZeroExit(t *testing.T) {
	runner := testRunner("failing-runner", manifest.Entrypoint{
		Command: "sh",
		Args:    []string{"-c", "echo partial; exit 3"},
	})

	res := testInvoker().Invoke(context.Background(), runner, Options{})
	if res.Error != nil {
		t.Fatalf("Invoke() error: %v, want none for a plain non-zero exit", res.Error)
	}
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}
	if !strings.Contains(res.Stdout, "partial") {
		t.Errorf("Stdout = %q, want partial output preserved", res.Stdout)
	}
}

func TestInvokeSpawnError(t *testing.T) {
	runner := testRunner("ghost-runner", manifest.Entrypoint{
		Command: "ecoreg-no-such-command",
	})

	res := testInvoker().Invoke(context.Background(), runner, Options{})
	if res.Error == nil {
		t.Fatal("Invoke() Error is nil, want invocation_failed")
	}
	var regErr *issue.RegistryError
	if !errors.As(res.Error, &regErr) || regErr.Code != issue.CodeInvocationFailed {
		t.Errorf("Error = %v, want code %s", res.Error, issue.CodeInvocationFailed)
	}
	if res.ExitCode != -1 {
		t.Errorf("ExitCode = %d, want -1", res.ExitCode)
	}
}

func TestInvokeTimeout(t *testing.T) {
	// exec replaces the shell so the interrupt reaches the sleeping process
	// directly.
	runner := testRunner("slow-runner", manifest.Entrypoint{
		Command: "sh",
		Args:    []string{"-c", "exec sleep 5"},
	})

	start := time.Now()
	res := testInvoker().Invoke(context.Background(), runner, Options{Timeout: 100 * time.Millisecond})
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("Invoke() took %s, want prompt interruption", elapsed)
	}
	if !res.TimedOut {
		t.Error("TimedOut = false, want true")
	}
	if res.ExitCode == 0 {
		t.Error("ExitCode = 0, want non-zero after interruption")
	}
}

func TestInvokeAllRunsSequentially(t *testing.T) {
	first := testRunner("first-runner", manifest.Entrypoint{
		Command: "sh",
		Args:    []string{"-c", "echo first"},
	})
	second := testRunner("second-runner", manifest.Entrypoint{
		Command: "sh",
		Args:    []string{"-c", "echo second"},
	})

	results := testInvoker().InvokeAll(context.Background(), []*preflight.ExecutableRunner{first, second}, Options{})
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].Module != "first-runner" || results[1].Module != "second-runner" {
		t.Errorf("result order = %s, %s; want input order preserved", results[0].Module, results[1].Module)
	}
}

func TestInjectFlags(t *testing.T) {
	t.Run("injects missing flags", func(t *testing.T) {
		ep := manifest.Entrypoint{Command: "node", Args: []string{"run.js"}}
		args := injectFlags(ep, "/tmp/in.json", "/tmp/out.json")

		joined := strings.Join(args, " ")
		for _, want := range []string{"--input /tmp/in.json", "--out /tmp/out.json", "--format json"} {
			if !strings.Contains(joined, want) {
				t.Errorf("args = %v, want %q injected", args, want)
			}
		}
	})

	t.Run("manifest args win", func(t *testing.T) {
		ep := manifest.Entrypoint{
			Command: "node",
			Args:    []string{"run.js", "--input=fixed.json", "--format", "xml"},
		}
		args := injectFlags(ep, "/tmp/in.json", "/tmp/out.json")

		joined := strings.Join(args, " ")
		if strings.Contains(joined, "/tmp/in.json") {
			t.Errorf("args = %v, injected --input over an explicit one", args)
		}
		if strings.Contains(joined, "--format json") {
			t.Errorf("args = %v, injected --format over an explicit one", args)
		}
		if !strings.Contains(joined, "--out /tmp/out.json") {
			t.Errorf("args = %v, want --out injected", args)
		}
	})
}

func TestRedact(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		secrets []string
		want    string
	}{
		{"single occurrence", "token=abc123", []string{"abc123"}, "token=" + Mask},
		{"every occurrence", "abc123 then abc123", []string{"abc123"}, Mask + " then " + Mask},
		{"multiple secrets", "a=x b=y", []string{"x", "y"}, "a=" + Mask + " b=" + Mask},
		{"empty secret skipped", "unchanged", []string{""}, "unchanged"},
		{"no match", "unchanged", []string{"zzz"}, "unchanged"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Redact(tt.in, tt.secrets); got != tt.want {
				t.Errorf("Redact(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestInvokeLeavesArtifactDirectory(t *testing.T) {
	runner := testRunner("artifact-runner", manifest.Entrypoint{
		Command: "sh",
		Args:    []string{"-c", "true"},
	})

	res := testInvoker().Invoke(context.Background(), runner, Options{Input: []byte(`{}`)})
	if res.Error != nil {
		t.Fatalf("Invoke() error: %v", res.Error)
	}

	dir := res.ArtifactPath
	if dir == "" {
		t.Fatal("ArtifactPath is empty")
	}
	// The input payload next to the artifact path must survive the run.
	inputPath := strings.TrimSuffix(dir, "report.json") + "input.json"
	if _, err := os.Stat(inputPath); err != nil {
		t.Errorf("input payload missing after run: %v", err)
	}
}
