//go:build integration

package integration

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	APIEndpoint  string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	BinaryPath   string
	Verbose      bool
}

// LoadTestConfig loads configuration from environment variables.
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		APIEndpoint:  os.Getenv("STRATA_ENDPOINT"),
		ClientID:     os.Getenv("STRATA_CLIENT_ID"),
		ClientSecret: os.Getenv("STRATA_CLIENT_SECRET"),
		Username:     os.Getenv("STRATA_USERNAME"),
		Password:     os.Getenv("STRATA_PASSWORD"),
		BinaryPath:   getBinaryPath(),
		Verbose:      os.Getenv("STRATA_VERBOSE") == "true",
	}
}

// getBinaryPath determines the path to the strata binary.
func getBinaryPath() string {
	if path := os.Getenv("STRATA_BINARY_PATH"); path != "" {
		return path
	}

	candidates := []string{
		"../../strata",
		"./strata",
		"../strata",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "strata" // Fallback to PATH
}

// SkipIfMissingConfig skips the test if required config is missing.
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	if config.APIEndpoint == "" {
		t.Skip("STRATA_ENDPOINT not set, skipping integration test")
	}

	if _, err := os.Stat(config.BinaryPath); os.IsNotExist(err) {
		t.Skipf("strata binary not found at %s, skipping integration test", config.BinaryPath)
	}
}

// CommandRunner provides utilities for running strata commands.
type CommandRunner struct {
	config *TestConfig
	t      *testing.T
}

// NewCommandRunner creates a new command runner.
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	return &CommandRunner{
		config: config,
		t:      t,
	}
}

// Run executes a strata command and returns output.
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	cmd := exec.Command(runner.config.BinaryPath, args...)

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.BinaryPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// RunWithInput executes a strata command with stdin input.
func (runner *CommandRunner) RunWithInput(input string, args ...string) (stdout, stderr string, err error) {
	cmd := exec.Command(runner.config.BinaryPath, args...)

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	cmd.Stdin = strings.NewReader(input)

	if runner.config.Verbose {
		runner.t.Logf("Running with input: %s %s", runner.config.BinaryPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// Login authenticates against the configured endpoint.
func (runner *CommandRunner) Login() error {
	switch {
	case runner.config.Username != "" && runner.config.Password != "":
		_, stderr, err := runner.Run("login",
			"--api", runner.config.APIEndpoint,
			"--username", runner.config.Username,
			"--password", runner.config.Password)
		if err != nil {
			return fmt.Errorf("failed to login with password grant: %s", stderr)
		}
	case runner.config.ClientID != "" && runner.config.ClientSecret != "":
		_, stderr, err := runner.Run("login",
			"--api", runner.config.APIEndpoint,
			"--client-id", runner.config.ClientID,
			"--client-secret", runner.config.ClientSecret)
		if err != nil {
			return fmt.Errorf("failed to login with client credentials: %s", stderr)
		}
	default:
		return fmt.Errorf("no authentication credentials provided")
	}

	return nil
}

// GenerateTestName creates a unique test resource name.
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().Unix())
}

// CleanupResource attempts to delete a test resource.
func (runner *CommandRunner) CleanupResource(resourceType, name string) {
	var args []string

	switch resourceType {
	case "cluster":
		args = []string{"clusters", "delete", name, "--force", "--wait"}
	case "template":
		args = []string{"templates", "delete", name, "--force"}
	case "policy":
		args = []string{"autoscaling-policies", "delete", name, "--force"}
	case "job":
		args = []string{"jobs", "delete", name, "--force"}
	default:
		runner.t.Logf("Unknown resource type for cleanup: %s", resourceType)

		return
	}

	stdout, stderr, err := runner.Run(args...)
	if err != nil && runner.config.Verbose {
		runner.t.Logf("Cleanup warning for %s %s: %s\nStderr: %s", resourceType, name, stdout, stderr)
	}
}

// WaitForCondition waits for a condition to be met with timeout.
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration, message string) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	timeoutChan := time.After(timeout)

	for {
		select {
		case <-ticker.C:
			if condition() {
				return
			}
		case <-timeoutChan:
			t.Fatalf("Timeout waiting for condition: %s", message)
		}
	}
}

// AssertJSONOutput verifies command output is valid JSON.
func AssertJSONOutput(t *testing.T, output string) {
	output = strings.TrimSpace(output)
	if !strings.HasPrefix(output, "{") && !strings.HasPrefix(output, "[") {
		t.Errorf("Output does not appear to be JSON: %s", output)
	}
}

// AssertYAMLOutput verifies command output is valid YAML.
func AssertYAMLOutput(t *testing.T, output string) {
	output = strings.TrimSpace(output)
	if strings.Contains(output, "---") || strings.Contains(output, ":") {
		return // Looks like YAML
	}

	t.Errorf("Output does not appear to be YAML: %s", output)
}
