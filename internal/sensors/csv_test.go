package sensors

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "readings.csv")
	content := `timestamp,room,sensor_name,value
2026-03-01 08:15:00,kitchen,temperature,19.5
2026-03-01T09:00:00,living_room,temperature,21
not-a-timestamp,kitchen,temperature,20
2026-03-01 10:00:00,kitchen,humidity,oops
2026-03-01 13:30:00,kitchen,temperature,24
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	readings, err := LoadCSV(path, nil)
	if err != nil {
		t.Fatalf("LoadCSV() error: %v", err)
	}
	if len(readings) != 3 {
		t.Fatalf("LoadCSV() returned %d readings, want 3 (bad rows skipped)", len(readings))
	}
	if readings[0].Room != "kitchen" || readings[0].Value != 19.5 {
		t.Errorf("first reading = %+v", readings[0])
	}
	if readings[1].SensorName != "temperature" || readings[1].Value != 21 {
		t.Errorf("second reading = %+v", readings[1])
	}
}

func TestLoadCSVMissingFile(t *testing.T) {
	if _, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv"), nil); err == nil {
		t.Error("LoadCSV() should fail for a missing file")
	}
}
