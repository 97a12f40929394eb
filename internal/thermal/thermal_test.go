package thermal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeZone(t *testing.T, root, name, typ, temp string) {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "type"), []byte(typ+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if temp != "" {
		if err := os.WriteFile(filepath.Join(dir, "temp"), []byte(temp+"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestCelsiusPicksPackageZone(t *testing.T) {
	root := t.TempDir()
	writeZone(t, root, "thermal_zone0", "acpitz", "27800")
	writeZone(t, root, "thermal_zone1", "x86_pkg_temp", "54999")
	writeZone(t, root, "thermal_zone2", "x86_pkg_temp", "90000")

	got, err := (&Reader{Root: root}).Celsius()
	if err != nil {
		t.Fatalf("Celsius() error = %v", err)
	}
	if got != 54 {
		t.Fatalf("Celsius() = %d, want 54", got)
	}
}

func TestCelsiusNumericZoneOrder(t *testing.T) {
	root := t.TempDir()
	writeZone(t, root, "thermal_zone10", "x86_pkg_temp", "70000")
	writeZone(t, root, "thermal_zone9", "x86_pkg_temp", "40000")

	got, err := (&Reader{Root: root}).Celsius()
	if err != nil {
		t.Fatalf("Celsius() error = %v", err)
	}
	if got != 40 {
		t.Fatalf("Celsius() = %d, want 40 from thermal_zone9", got)
	}
}

func TestCelsiusUnavailable(t *testing.T) {
	root := t.TempDir()
	writeZone(t, root, "thermal_zone0", "acpitz", "27800")

	_, err := (&Reader{Root: root}).Celsius()
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Celsius() error = %v, want ErrUnavailable", err)
	}
}

func TestCelsiusMalformedTemperature(t *testing.T) {
	root := t.TempDir()
	writeZone(t, root, "thermal_zone0", "x86_pkg_temp", "hot")

	_, err := (&Reader{Root: root}).Celsius()
	if err == nil || errors.Is(err, ErrUnavailable) {
		t.Fatalf("Celsius() error = %v, want parse error", err)
	}
}
