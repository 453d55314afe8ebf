package openhab

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nerrad567/florabridge/internal/device"
	"github.com/nerrad567/florabridge/internal/infrastructure/config"
	"github.com/nerrad567/florabridge/internal/miflora"
)

// UnknownLocation is the group name used for sensors without a location.
const UnknownLocation = "UnknownRoom"

// ErrUnsupportedPayload is returned when the payload format is not JSON.
var ErrUnsupportedPayload = errors.New("openhab: only the json payload format can be exported")

var header = []string{
	"// miflora.items - Generated by florabridge.",
	"// Adapt to your needs! Things you probably want to modify:",
	"//     Room group names, icons,",
	`//     "gAll", "broker", "UnknownRoom"`,
	"",
	"// Mi Flora specific groups",
	`Group gMiFlora "All Mi Flora sensors and elements" (gAll)`,
}

// Generate writes the items for devices to w.
//
// Parameters:
//   - devices: Registry devices, in configuration order
//   - destination: Topic prefix the readings are published under
//   - payload: Configured MQTT payload format; must be "json"
//
// Returns:
//   - error: ErrUnsupportedPayload, or a write error
func Generate(w io.Writer, devices []*device.Device, destination, payload string) error {
	if payload != config.PayloadJSON {
		return fmt.Errorf("%w (got %q)", ErrUnsupportedPayload, payload)
	}

	catalog := miflora.Catalog()
	lines := append([]string(nil), header...)

	for _, p := range catalog {
		lines = append(lines, fmt.Sprintf(`Group g%s "Mi Flora %s elements" (gAll, gMiFlora)`, p.Name, p.DisplayName))
	}

	for _, d := range devices {
		loc := d.DisplayLocation(UnknownLocation)
		group := "g" + loc + d.ID

		lines = append(lines,
			"",
			fmt.Sprintf(`// Mi Flora "%s" (%s)`, d.Name, d.Address),
			fmt.Sprintf(`Group %s "Mi Flora Sensor %s" (gMiFlora, g%s)`, group, d.Name, loc),
		)
		for _, p := range catalog {
			lines = append(lines, item(loc, d, p, group, destination))
		}
	}

	bw := bufio.NewWriter(w)
	for _, l := range lines {
		if _, err := bw.WriteString(l + "\n"); err != nil {
			return fmt.Errorf("writing items: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing items: %w", err)
	}
	return nil
}

// item renders one Number item. Percent signs in units are doubled because
// openHAB labels use printf-style patterns.
func item(loc string, d *device.Device, p miflora.Parameter, group, destination string) string {
	return fmt.Sprintf(`Number %s_%s_%s "%s %s %s [%s %s]" <text> (%s, g%s) {mqtt="<[broker:%s/%s:state:JSONPATH($.%s)]"}`,
		loc, d.ID, p.Name,
		loc, d.Name, p.DisplayName, p.Format, strings.ReplaceAll(p.Unit, "%", "%%"),
		group, p.Name,
		destination, d.ID, p.Key,
	)
}
