package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	EnvConfig   = "FOLIO_CONFIG"
	EnvLogLevel = "FOLIO_LOG_LEVEL"
)

// RunExtension attempts to find and execute an external pf-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found.
func RunExtension(subcommand string, args []string) (bool, int) {
	externalCmdName := "pf-" + subcommand

	// Look for the external command in PATH
	lp, err := exec.LookPath(externalCmdName)
	if err != nil {
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = extensionEnv(os.Environ())

	if err := cmd.Run(); err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return true, exitError.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", externalCmdName, err)
		return true, 1 // Indicate that an attempt was made, but it failed
	}
	return true, 0
}

// extensionEnv passes the global flags to an extension through the environment.
func extensionEnv(environ []string) []string {
	env := append([]string(nil), environ...)
	if files := ConfigFiles(); len(files) > 0 {
		abs := make([]string, len(files))
		for i, f := range files {
			if p, err := filepath.Abs(f); err == nil {
				f = p
			}
			abs[i] = f
		}
		env = append(env, EnvConfig+"="+strings.Join(abs, string(os.PathListSeparator)))
	}
	if *logLevel != "" {
		env = append(env, EnvLogLevel+"="+*logLevel)
	}
	return env
}
