package diag

import "testing"

func TestCollect(t *testing.T) {
	Prime()
	r := Collect()

	if r.CPUPercent < 0 || r.CPUPercent > 100 {
		t.Errorf("cpu percent out of range: %v", r.CPUPercent)
	}
	if r.MemoryPercent <= 0 || r.MemoryPercent > 100 {
		t.Errorf("memory percent out of range: %v", r.MemoryPercent)
	}
	if r.MemoryUsedMB == 0 {
		t.Error("expected nonzero memory usage")
	}
	if r.UptimeSeconds == 0 {
		t.Error("expected nonzero uptime")
	}
}
