package inference

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNormalize_StandardDialect(t *testing.T) {
	raw := []byte(`{
		"success": true,
		"predictions": [
			{"class": "organic", "confidence": 0.83, "bbox": {"x1": 10, "y1": 20, "x2": 110, "y2": 220}},
			{"class": "recyclable", "confidence": 0.41}
		],
		"inference_time_ms": 41.5,
		"total_detections": 2
	}`)

	var resp predictResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	batch := resp.toBatch(time.Now())
	if len(batch.Detections) != 2 {
		t.Fatalf("expected 2 detections, got %d", len(batch.Detections))
	}

	first := batch.Detections[0]
	if first.Label != "organic" || first.Score != 0.83 {
		t.Errorf("unexpected first detection: %+v", first)
	}
	if first.Box == nil {
		t.Fatal("expected bbox on first detection")
	}
	if first.Box.X1 != 10 || first.Box.Y2 != 220 {
		t.Errorf("unexpected bbox: %+v", first.Box)
	}

	if batch.Detections[1].Box != nil {
		t.Error("expected nil bbox for label-only detection")
	}
}

func TestNormalize_OrdinalIndexForStandardDialect(t *testing.T) {
	raw := []byte(`{
		"success": true,
		"predictions": [
			{"class": "organic", "confidence": 0.8},
			{"class": "recyclable", "confidence": 0.7},
			{"class": "trash", "confidence": 0.6}
		],
		"total_detections": 3
	}`)

	var resp predictResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	batch := resp.toBatch(time.Now())
	if len(batch.Detections) != 3 {
		t.Fatalf("expected 3 detections, got %d", len(batch.Detections))
	}

	// The standard dialect carries no index field; each label-only
	// detection must still get a distinct one so their placeholder
	// boxes do not stack on the same spot.
	for i, d := range batch.Detections {
		if d.Index != i {
			t.Errorf("detection %d: got index %d, want %d", i, d.Index, i)
		}
	}
}

func TestNormalize_ExplicitZeroIndexKept(t *testing.T) {
	d, ok := rawDetection{Index: new(int), Label: "recyclable", Score: 0.5}.normalize(7)
	if !ok {
		t.Fatal("normalize rejected detection")
	}
	if d.Index != 0 {
		t.Errorf("got index %d, want explicit 0", d.Index)
	}
}

func TestNormalize_EnhancedDialect(t *testing.T) {
	raw := []byte(`{
		"success": true,
		"predictions": [
			{"index": 1, "label": "recyclable", "score": 0.67, "source": "yolo", "object_name": "bottle",
			 "bbox": [5, 6, 50, 60]}
		],
		"total_detections": 1
	}`)

	var resp predictResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	batch := resp.toBatch(time.Now())
	if len(batch.Detections) != 1 {
		t.Fatalf("expected 1 detection, got %d", len(batch.Detections))
	}

	d := batch.Detections[0]
	if d.Label != "recyclable" || d.Score != 0.67 || d.Index != 1 {
		t.Errorf("unexpected detection: %+v", d)
	}
	if d.Box == nil || d.Box.X1 != 5 || d.Box.Y2 != 60 {
		t.Errorf("unexpected bbox: %+v", d.Box)
	}
}

func TestNormalize_ScoreClamping(t *testing.T) {
	for _, tc := range []struct {
		in, want float64
	}{
		{-0.5, 0},
		{0.5, 0.5},
		{1.7, 1},
	} {
		d, ok := rawDetection{Class: "organic", Confidence: tc.in}.normalize(0)
		if !ok {
			t.Fatalf("normalize rejected score %v", tc.in)
		}
		if d.Score != tc.want {
			t.Errorf("score %v: got %v, want %v", tc.in, d.Score, tc.want)
		}
	}
}

func TestNormalize_DropsUnlabeled(t *testing.T) {
	if _, ok := (rawDetection{Confidence: 0.9}).normalize(0); ok {
		t.Error("expected unlabeled detection to be dropped")
	}

	// object_name alone is still a usable label
	d, ok := rawDetection{ObjectName: "bottle", Score: 0.4}.normalize(0)
	if !ok || d.Label != "bottle" {
		t.Errorf("expected object_name fallback, got %+v ok=%v", d, ok)
	}
}

func TestParseBBox_Malformed(t *testing.T) {
	cases := []string{
		`null`,
		`{"x1": 100, "y1": 10, "x2": 10, "y2": 100}`,
		`[1, 2, 3]`,
		`"nonsense"`,
	}
	for _, raw := range cases {
		if box := parseBBox(json.RawMessage(raw)); box != nil {
			t.Errorf("parseBBox(%s) = %+v, want nil", raw, box)
		}
	}
}
