package views

import (
	"errors"
	"html/template"
	"io"
	"io/fs"

	"rainwatch-server/internal/modules/telemetry/types"
)

var telemetryTmpl *template.Template

// loadTemplatesFromFS loads telemetry page templates from the given fs and dir.
// Used by LoadTemplates and by tests to simulate failure scenarios.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	telemetryTmpl, err = template.ParseFS(sub, "*.html")
	if err != nil {
		return err
	}
	return nil
}

// LoadTemplates loads embedded telemetry templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// IndexData is the view model for the landing page. Username is empty for
// anonymous visitors.
type IndexData struct {
	Username string
}

func RenderIndex(w io.Writer, data IndexData) error {
	if telemetryTmpl == nil {
		return errors.New("telemetry templates not loaded: call views.LoadTemplates during startup")
	}
	return telemetryTmpl.ExecuteTemplate(w, "index.html", data)
}

// AccountData is the view model for the account page.
type AccountData struct {
	Username string
	Devices  []types.Device
	Error    string
}

func RenderAccount(w io.Writer, data AccountData) error {
	if telemetryTmpl == nil {
		return errors.New("telemetry templates not loaded: call views.LoadTemplates during startup")
	}
	return telemetryTmpl.ExecuteTemplate(w, "account.html", data)
}

// DeviceReadings groups a device with its recent readings and the rain chance
// derived from the newest one.
type DeviceReadings struct {
	Device     types.Device
	Readings   []types.Reading
	RainChance int
}

// ReadingsData is the view model for the readings page.
type ReadingsData struct {
	Username string
	Devices  []DeviceReadings
}

func RenderReadings(w io.Writer, data ReadingsData) error {
	if telemetryTmpl == nil {
		return errors.New("telemetry templates not loaded: call views.LoadTemplates during startup")
	}
	return telemetryTmpl.ExecuteTemplate(w, "readings.html", data)
}
