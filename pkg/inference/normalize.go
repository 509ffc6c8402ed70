package inference

import (
	"encoding/json"
	"time"

	"github.com/borlacam/go-borlacam/pkg/detect"
)

// predictResponse is the wire shape of the /api/predict endpoint.
// Both known backend dialects fit in it: the standard one reports
// class/confidence, the enhanced one index/label/score with optional
// provenance fields.
type predictResponse struct {
	Success         bool            `json:"success"`
	Predictions     []rawDetection  `json:"predictions"`
	Error           string          `json:"error"`
	TotalDetections int             `json:"total_detections"`
	InferenceTimeMs json.RawMessage `json:"inference_time_ms"`
}

type rawDetection struct {
	// Standard dialect
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`

	// Enhanced dialect. Index is a pointer so an omitted field can be
	// told apart from an explicit zero.
	Index      *int    `json:"index"`
	Label      string  `json:"label"`
	Score      float64 `json:"score"`
	Source     string  `json:"source"`
	ObjectName string  `json:"object_name"`

	// Either {x1,y1,x2,y2} or [x1,y1,x2,y2]; may be absent entirely.
	BBox json.RawMessage `json:"bbox"`
}

type bboxObject struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// normalize converts one wire detection into the canonical shape.
// pos is the detection's ordinal position in the response, used as the
// index when the wire omits one so label-only detections still get
// distinct placeholder boxes. Returns false when the entry carries no
// usable label.
func (r rawDetection) normalize(pos int) (detect.Detection, bool) {
	label := r.Label
	score := r.Score
	if label == "" {
		label = r.Class
		score = r.Confidence
	}
	if label == "" {
		label = r.ObjectName
	}
	if label == "" {
		return detect.Detection{}, false
	}

	if score < 0 {
		score = 0
	} else if score > 1 {
		score = 1
	}

	index := pos
	if r.Index != nil {
		index = *r.Index
	}

	return detect.Detection{
		Label: label,
		Score: score,
		Index: index,
		Box:   parseBBox(r.BBox),
	}, true
}

// parseBBox accepts both bbox encodings and rejects malformed boxes.
func parseBBox(raw json.RawMessage) *detect.Box {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var obj bboxObject
	if err := json.Unmarshal(raw, &obj); err == nil && (obj.X1 != 0 || obj.X2 != 0 || obj.Y1 != 0 || obj.Y2 != 0) {
		box := detect.Box{X1: obj.X1, Y1: obj.Y1, X2: obj.X2, Y2: obj.Y2}
		if box.Valid() {
			return &box
		}
		return nil
	}

	var arr []float64
	if err := json.Unmarshal(raw, &arr); err == nil && len(arr) == 4 {
		box := detect.Box{X1: arr[0], Y1: arr[1], X2: arr[2], Y2: arr[3]}
		if box.Valid() {
			return &box
		}
	}
	return nil
}

// toBatch converts a successful service response into a canonical batch.
func (p predictResponse) toBatch(at time.Time) detect.Batch {
	batch := detect.Batch{At: at}
	for i, raw := range p.Predictions {
		if d, ok := raw.normalize(i); ok {
			batch.Detections = append(batch.Detections, d)
		}
	}
	return batch
}
