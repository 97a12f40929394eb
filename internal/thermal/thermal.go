// Package thermal reads the CPU package temperature from sysfs thermal zones.
package thermal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const (
	// DefaultRoot is where Linux exposes thermal zones.
	DefaultRoot = "/sys/class/thermal"
	// PackageSensor is the zone type reported by the Intel package sensor.
	PackageSensor = "x86_pkg_temp"
)

// ErrUnavailable means no zone reports the requested sensor type.
var ErrUnavailable = errors.New("cpu temperature unavailable")

// Reader finds the first zone whose type matches Sensor.
type Reader struct {
	Root   string
	Sensor string
}

func NewReader() *Reader {
	return &Reader{Root: DefaultRoot, Sensor: PackageSensor}
}

// Celsius returns the temperature in whole degrees, truncating millidegrees.
func (r *Reader) Celsius() (int, error) {
	root := r.Root
	if root == "" {
		root = DefaultRoot
	}
	sensor := r.Sensor
	if sensor == "" {
		sensor = PackageSensor
	}

	zones, err := filepath.Glob(filepath.Join(root, "thermal_zone*"))
	if err != nil {
		return 0, fmt.Errorf("list thermal zones: %w", err)
	}
	sort.Slice(zones, func(i, j int) bool { return zoneIndex(zones[i]) < zoneIndex(zones[j]) })

	for _, zone := range zones {
		typ, err := os.ReadFile(filepath.Join(zone, "type"))
		if err != nil || strings.TrimSpace(string(typ)) != sensor {
			continue
		}

		raw, err := os.ReadFile(filepath.Join(zone, "temp"))
		if err != nil {
			return 0, fmt.Errorf("read %s temperature: %w", filepath.Base(zone), err)
		}
		milli, err := strconv.Atoi(strings.TrimSpace(string(raw)))
		if err != nil {
			return 0, fmt.Errorf("parse %s temperature %q: %w", filepath.Base(zone), strings.TrimSpace(string(raw)), err)
		}
		return milli / 1000, nil
	}

	return 0, fmt.Errorf("%w: no %s zone under %s", ErrUnavailable, sensor, root)
}

// zoneIndex orders thermal_zone10 after thermal_zone9.
func zoneIndex(path string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(filepath.Base(path), "thermal_zone"))
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return n
}
