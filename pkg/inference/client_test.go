package inference

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// testFrame returns an encoded JPEG of the given size.
func testFrame(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode test frame: %v", err)
	}
	return buf.Bytes()
}

func TestDetect_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/predict" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"predictions": []map[string]interface{}{
				{"class": "organic", "confidence": 0.8,
					"bbox": map[string]float64{"x1": 10, "y1": 10, "x2": 100, "y2": 100}},
			},
		})
	}))
	defer srv.Close()

	c, err := NewClient(WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	batch, err := c.Detect(context.Background(), testFrame(t, 320, 240), 0.25)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(batch.Detections) != 1 {
		t.Fatalf("expected 1 detection, got %d", len(batch.Detections))
	}
	if batch.Detections[0].Label != "organic" {
		t.Errorf("unexpected label %q", batch.Detections[0].Label)
	}
	if batch.At.IsZero() {
		t.Error("expected batch timestamp")
	}
}

func TestDetect_DownscalesLargeFrames(t *testing.T) {
	var gotW, gotH int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Image string `json:"image"`
		}
		json.NewDecoder(r.Body).Decode(&payload)
		raw, err := base64.StdEncoding.DecodeString(payload.Image)
		if err != nil {
			t.Errorf("decode payload: %v", err)
		}
		img, _, err := image.Decode(bytes.NewReader(raw))
		if err != nil {
			t.Errorf("decode transmitted frame: %v", err)
		} else {
			gotW, gotH = img.Bounds().Dx(), img.Bounds().Dy()
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	}))
	defer srv.Close()

	c, _ := NewClient(WithBaseURL(srv.URL))
	if _, err := c.Detect(context.Background(), testFrame(t, 1280, 960), 0.25); err != nil {
		t.Fatalf("Detect: %v", err)
	}

	if gotW > 640 || gotH > 480 {
		t.Errorf("transmitted frame %dx%d exceeds 640x480 bound", gotW, gotH)
	}
	if gotW == 0 || gotH == 0 {
		t.Error("server never received a decodable frame")
	}
}

func TestDetect_ConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing is listening anymore

	c, _ := NewClient(WithBaseURL(srv.URL))
	batch, err := c.Detect(context.Background(), testFrame(t, 64, 48), 0.25)

	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected ConnectionError, got %v", err)
	}
	if !batch.Empty() {
		t.Error("expected empty batch on failure")
	}
	if Kind(err) != KindUnreachable {
		t.Errorf("Kind = %q, want %q", Kind(err), KindUnreachable)
	}
}

func TestDetect_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c, _ := NewClient(WithBaseURL(srv.URL), WithTimeout(50*time.Millisecond))
	_, err := c.Detect(context.Background(), testFrame(t, 64, 48), 0.25)

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected TimeoutError, got %v", err)
	}
	if Kind(err) != KindTimeout {
		t.Errorf("Kind = %q, want %q", Kind(err), KindTimeout)
	}
}

func TestDetect_ResponseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"error": "Model not loaded"})
	}))
	defer srv.Close()

	c, _ := NewClient(WithBaseURL(srv.URL))
	batch, err := c.Detect(context.Background(), testFrame(t, 64, 48), 0.25)

	var respErr *ResponseError
	if !errors.As(err, &respErr) {
		t.Fatalf("expected ResponseError, got %v", err)
	}
	if respErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("unexpected status %d", respErr.StatusCode)
	}
	if respErr.Message != "Model not loaded" {
		t.Errorf("unexpected message %q", respErr.Message)
	}
	if !batch.Empty() {
		t.Error("expected empty batch on failure")
	}
}

func TestDetect_UnsuccessfulPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": "bad image"})
	}))
	defer srv.Close()

	c, _ := NewClient(WithBaseURL(srv.URL))
	_, err := c.Detect(context.Background(), testFrame(t, 64, 48), 0.25)

	var respErr *ResponseError
	if !errors.As(err, &respErr) {
		t.Fatalf("expected ResponseError, got %v", err)
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/status" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"model_loaded":  true,
			"model_classes": []string{"organic", "recyclable"},
			"model_device":  "cpu",
		})
	}))
	defer srv.Close()

	c, _ := NewClient(WithBaseURL(srv.URL))
	info, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if !info.ModelLoaded || len(info.Classes) != 2 {
		t.Errorf("unexpected info: %+v", info)
	}
}

func TestNewClient_RequiresEndpoint(t *testing.T) {
	if _, err := NewClient(WithBaseURL("")); !errors.Is(err, ErrNoEndpoint) {
		t.Errorf("expected ErrNoEndpoint, got %v", err)
	}
}
