// Package launcher locates the backend runtime, enforces its minimum
// version and execs a target command with the computed library path.
package launcher

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"syscall"
)

// ErrUsage is returned when no target command was given.
var ErrUsage = errors.New("usage: pio <command> [args...]")

// RuntimeHomeEnv overrides runtime binary discovery; when set, the runtime
// is expected at $PIO_RUNTIME_HOME/bin/<runtime>.
const RuntimeHomeEnv = "PIO_RUNTIME_HOME"

// HomeEnv is exported into the child environment so downstream commands can
// locate the installation root.
const HomeEnv = "PIO_HOME"

// Options configures a launch.
type Options struct {
	Home       string // installation root; defaults to the launcher's parent dir
	Runtime    string // runtime binary name, e.g. "pio-runtime"
	MinVersion string // minimum runtime version, dotted numeric
	PathHelper string // command printing the library search path on stdout
	Stderr     io.Writer

	// seams for tests
	lookPath func(string) (string, error)
	execve   func(argv0 string, argv []string, env []string) error
}

func (o *Options) setDefaults() {
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.lookPath == nil {
		o.lookPath = exec.LookPath
	}
	if o.execve == nil {
		o.execve = syscall.Exec
	}
	if o.Home == "" {
		if exe, err := os.Executable(); err == nil {
			o.Home = filepath.Dir(filepath.Dir(exe))
		}
	}
	if o.PathHelper == "" {
		o.PathHelper = filepath.Join(o.Home, "bin", "pio-libpath")
	}
}

// Run resolves the runtime, validates its version, computes the library path
// and replaces the current process with the target command. It only returns
// on error; every error path leaves the target unexecuted.
func Run(opts Options, target string, args []string) error {
	opts.setDefaults()

	if target == "" {
		return ErrUsage
	}

	runtimeBin, err := resolveRuntime(&opts)
	if err != nil {
		return err
	}

	version, err := probeVersion(runtimeBin)
	if err != nil {
		return fmt.Errorf("probe %s version: %w", opts.Runtime, err)
	}
	if !AtLeast(version, opts.MinVersion) {
		return fmt.Errorf("%s %s or later is required, found %s", opts.Runtime, opts.MinVersion, version)
	}

	libPath, err := computeLibPath(&opts)
	if err != nil {
		return err
	}

	env := append(os.Environ(), HomeEnv+"="+opts.Home)
	argv := append([]string{runtimeBin, "--library-path", libPath, target}, args...)
	return opts.execve(runtimeBin, argv, env)
}

func resolveRuntime(opts *Options) (string, error) {
	if home := os.Getenv(RuntimeHomeEnv); home != "" {
		bin := filepath.Join(home, "bin", opts.Runtime)
		if info, err := os.Stat(bin); err != nil || info.IsDir() {
			return "", fmt.Errorf("%s is set to %s but %s was not found there", RuntimeHomeEnv, home, opts.Runtime)
		}
		return bin, nil
	}
	bin, err := opts.lookPath(opts.Runtime)
	if err != nil {
		return "", fmt.Errorf("%s not found in PATH and %s is not set", opts.Runtime, RuntimeHomeEnv)
	}
	return bin, nil
}

var versionPattern = regexp.MustCompile(`\d+(\.\d+)+`)

func probeVersion(runtimeBin string) (string, error) {
	out, err := exec.Command(runtimeBin, "--version").CombinedOutput()
	if err != nil {
		return "", err
	}
	v := versionPattern.FindString(string(out))
	if v == "" {
		return "", fmt.Errorf("no version in output %q", strings.TrimSpace(string(out)))
	}
	return v, nil
}

// computeLibPath invokes the helper and returns its stdout. On failure the
// helper's stderr is forwarded so the operator sees the underlying cause.
func computeLibPath(opts *Options) (string, error) {
	cmd := exec.Command(opts.PathHelper)
	cmd.Env = append(os.Environ(), HomeEnv+"="+opts.Home)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		io.Copy(opts.Stderr, &stderr)
		return "", fmt.Errorf("compute library path: %w", err)
	}
	return strings.TrimSpace(stdout.String()), nil
}
