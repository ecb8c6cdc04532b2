package support

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/MeKo-Tech/barscan/cmd/barscan/cmd"
	"github.com/cucumber/godog"
)

// iRunCommand executes a barscan command line in-process and stores the result.
// The command runs inside the scenario temp directory with the scenario
// environment applied.
func (testCtx *TestContext) iRunCommand(command string) error {
	command = testCtx.substitute(command)
	testCtx.LastCommand = command

	parts := strings.Fields(command)
	if len(parts) == 0 {
		return errors.New("empty command")
	}
	if parts[0] != "barscan" {
		return fmt.Errorf("only barscan commands are supported, got %q", parts[0])
	}

	restoreEnv := testCtx.applyEnv()
	defer restoreEnv()

	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	if err := os.Chdir(testCtx.TempDir); err != nil {
		return err
	}
	defer func() { _ = os.Chdir(wd) }()

	var stdout, stderr bytes.Buffer
	root := cmd.NewRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(parts[1:])

	start := time.Now()
	err = root.Execute()
	testCtx.LastDuration = time.Since(start)
	testCtx.LastOutput = stdout.String()
	testCtx.LastStderr = stderr.String()
	testCtx.LastError = err
	testCtx.LastExitCode = 0
	if err != nil {
		testCtx.LastExitCode = 1
	}
	return nil
}

// applyEnv sets the scenario environment and returns a function restoring the previous values.
func (testCtx *TestContext) applyEnv() func() {
	type prev struct {
		value string
		set   bool
	}
	saved := make(map[string]prev, len(testCtx.EnvVars))
	for k, v := range testCtx.EnvVars {
		old, ok := os.LookupEnv(k)
		saved[k] = prev{old, ok}
		_ = os.Setenv(k, v)
	}
	return func() {
		for k, p := range saved {
			if p.set {
				_ = os.Setenv(k, p.value)
			} else {
				_ = os.Unsetenv(k)
			}
		}
	}
}

func (testCtx *TestContext) theEnvironmentVariableIsSetTo(name, value string) error {
	testCtx.EnvVars[name] = value
	return nil
}

func (testCtx *TestContext) theCommandShouldSucceed() error {
	if testCtx.LastExitCode != 0 {
		return fmt.Errorf("command failed: %w\nstdout: %s\nstderr: %s",
			testCtx.LastError, testCtx.LastOutput, testCtx.LastStderr)
	}
	return nil
}

func (testCtx *TestContext) theCommandShouldFail() error {
	if testCtx.LastExitCode == 0 {
		return fmt.Errorf("command succeeded when it should have failed\nOutput: %s", testCtx.LastOutput)
	}
	return nil
}

func (testCtx *TestContext) theOutputShouldContain(expected string) error {
	expected = testCtx.substitute(expected)
	if !strings.Contains(testCtx.LastOutput, expected) {
		return fmt.Errorf("output does not contain '%s'\nActual output: %s", expected, testCtx.LastOutput)
	}
	return nil
}

func (testCtx *TestContext) theOutputShouldNotContain(unexpected string) error {
	if strings.Contains(testCtx.LastOutput, unexpected) {
		return fmt.Errorf("output unexpectedly contains '%s'\nActual output: %s", unexpected, testCtx.LastOutput)
	}
	return nil
}

func (testCtx *TestContext) theOutputShouldHaveLines(n int) error {
	out := strings.TrimSpace(testCtx.LastOutput)
	got := 0
	if out != "" {
		got = len(strings.Split(out, "\n"))
	}
	if got != n {
		return fmt.Errorf("expected %d output lines, got %d\nActual output: %s", n, got, testCtx.LastOutput)
	}
	return nil
}

func (testCtx *TestContext) theStderrShouldContain(expected string) error {
	if !strings.Contains(testCtx.LastStderr, expected) {
		return fmt.Errorf("stderr does not contain '%s'\nActual stderr: %s", expected, testCtx.LastStderr)
	}
	return nil
}

func (testCtx *TestContext) theErrorShouldMention(text string) error {
	if testCtx.LastError == nil {
		return errors.New("expected an error but the command succeeded")
	}
	if !strings.Contains(strings.ToLower(testCtx.LastError.Error()), strings.ToLower(text)) {
		return fmt.Errorf("error %q does not mention %q", testCtx.LastError, text)
	}
	return nil
}

// theOutputShouldBeValidJSON verifies that stdout carries nothing but a JSON document.
func (testCtx *TestContext) theOutputShouldBeValidJSON() error {
	if !json.Valid([]byte(testCtx.LastOutput)) {
		return fmt.Errorf("output is not valid JSON: %s", testCtx.LastOutput)
	}
	return nil
}

// theJSONImageShouldHave checks a field of the image at index in a {"images": [...]} document.
func (testCtx *TestContext) theJSONImageShouldHave(index int, field, value string) error {
	var doc struct {
		Images []map[string]any `json:"images"`
	}
	if err := json.Unmarshal([]byte(testCtx.LastOutput), &doc); err != nil {
		return fmt.Errorf("failed to parse JSON output: %w", err)
	}
	if index >= len(doc.Images) {
		return fmt.Errorf("output has %d images, wanted index %d", len(doc.Images), index)
	}
	got, ok := doc.Images[index][field]
	if !ok {
		return fmt.Errorf("image %d has no field %q", index, field)
	}
	if fmt.Sprint(got) != value {
		return fmt.Errorf("image %d field %q = %v, want %s", index, field, got, value)
	}
	return nil
}

func (testCtx *TestContext) theCSVHeaderShouldBe(header string) error {
	records, err := csv.NewReader(strings.NewReader(testCtx.LastOutput)).ReadAll()
	if err != nil {
		return fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return errors.New("CSV has no records")
	}
	if got := strings.Join(records[0], ","); got != header {
		return fmt.Errorf("CSV header = %q, want %q", got, header)
	}
	return nil
}

func (testCtx *TestContext) theFileShouldExist(name string) error {
	if _, err := os.Stat(testCtx.path(name)); err != nil {
		return fmt.Errorf("file %s does not exist: %w", name, err)
	}
	return nil
}

func (testCtx *TestContext) theFileShouldContain(name, expected string) error {
	data, err := os.ReadFile(testCtx.path(name))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if !strings.Contains(string(data), expected) {
		return fmt.Errorf("file %s does not contain %q\nContent: %s", name, expected, data)
	}
	return nil
}

func (testCtx *TestContext) theDirectoryShouldNotBeEmpty(name string) error {
	entries, err := os.ReadDir(testCtx.path(name))
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("directory %s is empty", name)
	}
	return nil
}

// RegisterCommonSteps registers command execution and output steps.
func (testCtx *TestContext) RegisterCommonSteps(sc *godog.ScenarioContext) {
	sc.Step(`^I run "([^"]*)"$`, testCtx.iRunCommand)
	sc.Step(`^the environment variable "([^"]*)" is set to "([^"]*)"$`, testCtx.theEnvironmentVariableIsSetTo)
	sc.Step(`^the command should succeed$`, testCtx.theCommandShouldSucceed)
	sc.Step(`^the command should fail$`, testCtx.theCommandShouldFail)
	sc.Step(`^the output should contain "([^"]*)"$`, testCtx.theOutputShouldContain)
	sc.Step(`^the output should not contain "([^"]*)"$`, testCtx.theOutputShouldNotContain)
	sc.Step(`^the output should have (\d+) lines?$`, testCtx.theOutputShouldHaveLines)
	sc.Step(`^stderr should contain "([^"]*)"$`, testCtx.theStderrShouldContain)
	sc.Step(`^the error should mention "([^"]*)"$`, testCtx.theErrorShouldMention)
	sc.Step(`^the output should be valid JSON$`, testCtx.theOutputShouldBeValidJSON)
	sc.Step(`^image (\d+) in the JSON should have "([^"]*)" set to "([^"]*)"$`, testCtx.theJSONImageShouldHave)
	sc.Step(`^the CSV header should be "([^"]*)"$`, testCtx.theCSVHeaderShouldBe)
	sc.Step(`^the file "([^"]*)" should exist$`, testCtx.theFileShouldExist)
	sc.Step(`^the file "([^"]*)" should contain "([^"]*)"$`, testCtx.theFileShouldContain)
	sc.Step(`^the directory "([^"]*)" should not be empty$`, testCtx.theDirectoryShouldNotBeEmpty)
}
