package launcher

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

type execRecorder struct {
	called bool
	argv   []string
	env    []string
}

func (r *execRecorder) exec(argv0 string, argv []string, env []string) error {
	r.called = true
	r.argv = argv
	r.env = env
	return nil
}

func testOptions(t *testing.T, runtimeVersion string) (Options, *execRecorder, *bytes.Buffer) {
	t.Helper()
	t.Setenv(RuntimeHomeEnv, "") // empty means unset for resolveRuntime
	dir := t.TempDir()
	runtime := writeScript(t, dir, "pio-runtime", `echo "pio-runtime version `+runtimeVersion+`"`)
	helper := writeScript(t, dir, "pio-libpath", `echo "/opt/pio/lib:/opt/pio/plugins"`)

	rec := &execRecorder{}
	var stderr bytes.Buffer
	opts := Options{
		Home:       dir,
		Runtime:    "pio-runtime",
		MinVersion: "1.3.0",
		PathHelper: helper,
		Stderr:     &stderr,
		lookPath: func(name string) (string, error) {
			if name == "pio-runtime" {
				return runtime, nil
			}
			return "", errors.New("not found")
		},
		execve: rec.exec,
	}
	return opts, rec, &stderr
}

func TestRunNoTarget(t *testing.T) {
	opts, rec, _ := testOptions(t, "1.6.3")
	err := Run(opts, "", nil)
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected ErrUsage, got %v", err)
	}
	if rec.called {
		t.Fatal("must not exec without a target")
	}
}

func TestRunRuntimeNotFound(t *testing.T) {
	opts, rec, _ := testOptions(t, "1.6.3")
	opts.lookPath = func(string) (string, error) { return "", errors.New("not found") }

	err := Run(opts, "train", nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "not found in PATH") {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.called {
		t.Fatal("must not exec without a runtime")
	}
}

func TestRunRuntimeHomeOverride(t *testing.T) {
	opts, rec, _ := testOptions(t, "1.6.3")
	home := t.TempDir()
	if err := os.MkdirAll(filepath.Join(home, "bin"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeScript(t, filepath.Join(home, "bin"), "pio-runtime", `echo "pio-runtime version 2.1.0"`)
	t.Setenv(RuntimeHomeEnv, home)

	if err := Run(opts, "train", nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !rec.called {
		t.Fatal("expected exec")
	}
	if got := rec.argv[0]; got != filepath.Join(home, "bin", "pio-runtime") {
		t.Fatalf("exec'd %s, want runtime from override", got)
	}
}

func TestRunRuntimeHomeBogus(t *testing.T) {
	opts, rec, _ := testOptions(t, "1.6.3")
	t.Setenv(RuntimeHomeEnv, t.TempDir())

	if err := Run(opts, "train", nil); err == nil {
		t.Fatal("expected an error for missing runtime under override")
	}
	if rec.called {
		t.Fatal("must not exec")
	}
}

func TestRunVersionBelowMinimum(t *testing.T) {
	opts, rec, _ := testOptions(t, "1.2.0")
	err := Run(opts, "train", nil)
	if err == nil {
		t.Fatal("expected version error")
	}
	if !strings.Contains(err.Error(), "1.3.0") {
		t.Fatalf("error should name the minimum version: %v", err)
	}
	if rec.called {
		t.Fatal("must not exec below minimum version")
	}
}

func TestRunPathHelperFailure(t *testing.T) {
	opts, rec, stderr := testOptions(t, "1.6.3")
	opts.PathHelper = writeScript(t, t.TempDir(), "pio-libpath", `echo "libpath helper exploded" >&2; exit 3`)

	err := Run(opts, "train", nil)
	if err == nil {
		t.Fatal("expected helper failure")
	}
	if !strings.Contains(stderr.String(), "libpath helper exploded") {
		t.Fatalf("helper stderr not forwarded, got %q", stderr.String())
	}
	if rec.called {
		t.Fatal("must not exec after helper failure")
	}
}

func TestRunExecsTarget(t *testing.T) {
	opts, rec, _ := testOptions(t, "1.6.3")
	if err := Run(opts, "deploy", []string{"--port", "8000"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !rec.called {
		t.Fatal("expected exec")
	}
	joined := strings.Join(rec.argv, " ")
	if !strings.Contains(joined, "--library-path /opt/pio/lib:/opt/pio/plugins") {
		t.Fatalf("library path missing from argv: %q", joined)
	}
	if !strings.Contains(joined, "deploy --port 8000") {
		t.Fatalf("target and args not forwarded: %q", joined)
	}
	found := false
	for _, kv := range rec.env {
		if kv == HomeEnv+"="+opts.Home {
			found = true
		}
	}
	if !found {
		t.Fatalf("%s not exported to child env", HomeEnv)
	}
}
