package support

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/MeKo-Tech/barscan/internal/testutil"
	"github.com/cucumber/godog"
)

// renderFixture produces the named test image.
func renderFixture(kind string) (image.Image, error) {
	if kind == "blank" {
		return testutil.Uniform(240, 160, 255), nil
	}
	img, err := testutil.RenderEAN13(testutil.DefaultBarcodeSpec())
	if err != nil {
		return nil, err
	}
	switch kind {
	case "upright":
		return img, nil
	case "upside-down", "rotated":
		return testutil.Rotate(img, 180), nil
	case "sideways":
		return testutil.Rotate(img, 90), nil
	default:
		return nil, fmt.Errorf("unknown fixture kind %q", kind)
	}
}

func (testCtx *TestContext) writeFixture(dir, name, kind string) error {
	img, err := renderFixture(kind)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	path := filepath.Join(dir, name)
	if err := testutil.SavePNG(path, img); err != nil {
		return fmt.Errorf("failed to write fixture %s: %w", path, err)
	}
	testCtx.LastFile = path
	return nil
}

// anImageNamed writes a fixture image into the scenario images directory.
func (testCtx *TestContext) anImageNamed(kind, name string) error {
	return testCtx.writeFixture(testCtx.ImagesDir, name, kind)
}

// anImageInSubdirectory writes a fixture into a nested directory.
func (testCtx *TestContext) anImageInSubdirectory(kind, name, sub string) error {
	return testCtx.writeFixture(filepath.Join(testCtx.ImagesDir, sub), name, kind)
}

// aFileWithContent writes a raw file, used for broken images and config files.
func (testCtx *TestContext) aFileWithContent(name string, content *godog.DocString) error {
	path := testCtx.path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content.Content), 0o600)
}

// aBrokenImageNamed writes a file with an image extension but no image data.
func (testCtx *TestContext) aBrokenImageNamed(name string) error {
	if err := os.MkdirAll(testCtx.ImagesDir, 0o750); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(testCtx.ImagesDir, name), []byte("definitely not an image"), 0o600)
}

// RegisterImageSteps registers the fixture steps.
func (testCtx *TestContext) RegisterImageSteps(sc *godog.ScenarioContext) {
	sc.Step(`^an? (upright|upside-down|rotated|sideways|blank) barcode image "([^"]*)"$`, testCtx.anImageNamed)
	sc.Step(`^an? (upright|upside-down|rotated|sideways|blank) barcode image "([^"]*)" in "([^"]*)"$`,
		testCtx.anImageInSubdirectory)
	sc.Step(`^a broken image "([^"]*)"$`, testCtx.aBrokenImageNamed)
	sc.Step(`^a file "([^"]*)" with content:$`, testCtx.aFileWithContent)
}
