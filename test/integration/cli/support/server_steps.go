package support

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/barscan/internal/pipeline"
	"github.com/MeKo-Tech/barscan/internal/server"
	"github.com/cucumber/godog"
)

func (testCtx *TestContext) startServer(cfg server.Config) error {
	testCtx.stopServer()
	srv, err := server.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	mux := http.NewServeMux()
	srv.SetupRoutes(mux)
	testCtx.HTTPServer = httptest.NewServer(mux)
	return nil
}

func (testCtx *TestContext) stopServer() {
	if testCtx.HTTPServer != nil {
		testCtx.HTTPServer.Close()
		testCtx.HTTPServer = nil
	}
}

func defaultServerConfig() server.Config {
	return server.Config{
		CORSOrigin:     "*",
		MaxUploadMB:    20,
		TimeoutSec:     30,
		MaxBatchSize:   16,
		PipelineConfig: pipeline.DefaultConfig(),
	}
}

func (testCtx *TestContext) theScanServerIsRunning() error {
	return testCtx.startServer(defaultServerConfig())
}

func (testCtx *TestContext) theScanServerIsRunningWithRequestsPerMinute(rpm int) error {
	cfg := defaultServerConfig()
	cfg.RequestsPerMinute = rpm
	return testCtx.startServer(cfg)
}

func (testCtx *TestContext) storeResponse(resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	testCtx.LastHTTPStatusCode = resp.StatusCode
	testCtx.LastHTTPResponse = string(body)
	testCtx.LastHTTPHeaders = map[string]string{}
	for k := range resp.Header {
		testCtx.LastHTTPHeaders[k] = resp.Header.Get(k)
	}
	return nil
}

func (testCtx *TestContext) iSendAGETRequestTo(path string) error {
	if testCtx.HTTPServer == nil {
		return fmt.Errorf("server is not running")
	}
	resp, err := http.Get(testCtx.HTTPServer.URL + path) //nolint:noctx // test request
	if err != nil {
		return err
	}
	return testCtx.storeResponse(resp)
}

func (testCtx *TestContext) iUploadTo(name, path string) error {
	if testCtx.HTTPServer == nil {
		return fmt.Errorf("server is not running")
	}
	data, err := os.ReadFile(filepath.Join(testCtx.ImagesDir, name))
	if err != nil {
		return err
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", name)
	if err != nil {
		return err
	}
	if _, err := part.Write(data); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	resp, err := http.Post(testCtx.HTTPServer.URL+path, w.FormDataContentType(), &body) //nolint:noctx // test request
	if err != nil {
		return err
	}
	return testCtx.storeResponse(resp)
}

func (testCtx *TestContext) iSendABatchWith(names string) error {
	if testCtx.HTTPServer == nil {
		return fmt.Errorf("server is not running")
	}
	var req server.BatchScanRequest
	for _, name := range strings.Split(names, ",") {
		name = strings.TrimSpace(name)
		data, err := os.ReadFile(filepath.Join(testCtx.ImagesDir, name))
		if err != nil {
			return err
		}
		req.Images = append(req.Images, server.BatchImage{Name: name, Data: data})
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}
	resp, err := http.Post(testCtx.HTTPServer.URL+"/scan/batch", "application/json", bytes.NewReader(payload)) //nolint:noctx // test request
	if err != nil {
		return err
	}
	return testCtx.storeResponse(resp)
}

func (testCtx *TestContext) theResponseStatusShouldBe(code int) error {
	if testCtx.LastHTTPStatusCode != code {
		return fmt.Errorf("expected status %d, got %d\nBody: %s", code, testCtx.LastHTTPStatusCode, testCtx.LastHTTPResponse)
	}
	return nil
}

func (testCtx *TestContext) theResponseShouldContain(text string) error {
	if !strings.Contains(testCtx.LastHTTPResponse, text) {
		return fmt.Errorf("response does not contain %q\nBody: %s", text, testCtx.LastHTTPResponse)
	}
	return nil
}

// theResponseFieldShouldBe compares a top-level JSON field by its printed value.
func (testCtx *TestContext) theResponseFieldShouldBe(field, value string) error {
	var body map[string]any
	if err := json.Unmarshal([]byte(testCtx.LastHTTPResponse), &body); err != nil {
		return fmt.Errorf("response is not JSON: %w", err)
	}
	got, ok := body[field]
	if !ok {
		return fmt.Errorf("response has no field %q", field)
	}
	if got == nil {
		got = "null"
	}
	if fmt.Sprint(got) != value {
		return fmt.Errorf("field %q = %v, want %s", field, got, value)
	}
	return nil
}

func (testCtx *TestContext) theBatchSummaryShouldReport(found, notFound int) error {
	var body server.BatchScanResponse
	if err := json.Unmarshal([]byte(testCtx.LastHTTPResponse), &body); err != nil {
		return fmt.Errorf("response is not a batch response: %w", err)
	}
	if body.Summary.Found != found || body.Summary.NotFound != notFound {
		return fmt.Errorf("summary = %+v, want %d found and %d not found", body.Summary, found, notFound)
	}
	return nil
}

func (testCtx *TestContext) theResponseHeaderShouldBe(name, value string) error {
	if got := testCtx.LastHTTPHeaders[http.CanonicalHeaderKey(name)]; got != value {
		return fmt.Errorf("header %s = %q, want %q", name, got, value)
	}
	return nil
}

// RegisterServerSteps registers the HTTP API steps.
func (testCtx *TestContext) RegisterServerSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the scan server is running$`, testCtx.theScanServerIsRunning)
	sc.Step(`^the scan server is running with a limit of (\d+) requests? per minute$`,
		testCtx.theScanServerIsRunningWithRequestsPerMinute)
	sc.Step(`^I send a GET request to "([^"]*)"$`, testCtx.iSendAGETRequestTo)
	sc.Step(`^I upload "([^"]*)" to "([^"]*)"$`, testCtx.iUploadTo)
	sc.Step(`^I send a batch request with "([^"]*)"$`, testCtx.iSendABatchWith)
	sc.Step(`^the response status should be (\d+)$`, testCtx.theResponseStatusShouldBe)
	sc.Step(`^the response should contain "([^"]*)"$`, testCtx.theResponseShouldContain)
	sc.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, testCtx.theResponseFieldShouldBe)
	sc.Step(`^the batch summary should report (\d+) found and (\d+) not found$`, testCtx.theBatchSummaryShouldReport)
	sc.Step(`^the response header "([^"]*)" should be "([^"]*)"$`, testCtx.theResponseHeaderShouldBe)
}
