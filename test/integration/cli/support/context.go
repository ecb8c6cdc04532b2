// Package support holds the godog step definitions for the barscan CLI suite.
package support

import (
	"errors"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TestContext holds the state of one scenario.
type TestContext struct {
	// Command execution state
	LastCommand  string
	LastOutput   string
	LastStderr   string
	LastError    error
	LastExitCode int
	LastDuration time.Duration

	// Test environment
	TempDir    string
	ImagesDir  string
	LastFile   string
	EnvVars    map[string]string
	ConfigFile string

	// HTTP state
	HTTPServer         *httptest.Server
	LastHTTPStatusCode int
	LastHTTPResponse   string
	LastHTTPHeaders    map[string]string
}

// NewTestContext creates a scenario context with its own temp directory.
func NewTestContext() (*TestContext, error) {
	tempDir, err := os.MkdirTemp("", "barscan-test-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	return &TestContext{
		TempDir:   tempDir,
		ImagesDir: filepath.Join(tempDir, "images"),
		EnvVars:   map[string]string{},
	}, nil
}

// Cleanup stops the test server and removes the temp directory.
func (testCtx *TestContext) Cleanup() error {
	var errs []error
	testCtx.stopServer()
	if err := os.RemoveAll(testCtx.TempDir); err != nil && !os.IsNotExist(err) {
		errs = append(errs, fmt.Errorf("failed to remove temp directory %s: %w", testCtx.TempDir, err))
	}
	return errors.Join(errs...)
}

// substitute expands the {tmp} and {images} placeholders used in feature files.
func (testCtx *TestContext) substitute(s string) string {
	return strings.NewReplacer(
		"{tmp}", testCtx.TempDir,
		"{images}", testCtx.ImagesDir,
	).Replace(s)
}

// path resolves a feature file path relative to the scenario temp directory.
func (testCtx *TestContext) path(name string) string {
	name = testCtx.substitute(name)
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(testCtx.TempDir, name)
}
