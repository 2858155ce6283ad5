package page

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/luispater/wiselenium/driver"
	log "github.com/sirupsen/logrus"
)

// ScreenshotDir receives screenshots taken without a file name.
var ScreenshotDir = "screenshots"

// TakeScreenShot writes the viewport of d as PNG to fileName and returns the
// path written. A file name without extension gets ".png".
func TakeScreenShot(d driver.Driver, fileName string) (string, error) {
	if fileName == "" {
		fileName = filepath.Join(ScreenshotDir, uuid.New().String())
	}
	if filepath.Ext(fileName) == "" {
		fileName += ".png"
	}

	data, err := d.Screenshot()
	if err != nil {
		return "", fmt.Errorf("failed to capture screenshot: %w", err)
	}
	if dir := filepath.Dir(fileName); dir != "." {
		if err = os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create screenshot directory: %w", err)
		}
	}
	if err = os.WriteFile(fileName, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write screenshot: %w", err)
	}
	log.Debugf("screenshot saved to %s", fileName)
	return fileName, nil
}
