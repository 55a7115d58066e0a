package monitorService

import (
	"DrowsyWatch/internal/entity"
	"DrowsyWatch/pkg/utils"
	"errors"
	"golang.org/x/net/context"
	"testing"
)

type fakeFaceService struct {
	result *entity.DetectionResult
	err    error
	frames [][]byte
}

func (f *fakeFaceService) ProcessFaceFrame(ctx context.Context, frame []byte) (*entity.DetectionResult, error) {
	f.frames = append(f.frames, frame)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeFaceService) IsConnected() bool { return true }
func (f *fakeFaceService) Reconnect() error  { return nil }
func (f *fakeFaceService) CloseConnections() {}

func TestRemoteClassifier(t *testing.T) {
	frame := entity.Frame{Seq: 1, Timestamp: epoch, Image: grayImage(32, 24)}

	tests := []struct {
		name    string
		service *fakeFaceService
		present bool
		wantErr bool
	}{
		{"face found", &fakeFaceService{result: &entity.DetectionResult{Status: "ok", FaceCount: 1}}, true, false},
		{"face by position", &fakeFaceService{result: &entity.DetectionResult{FacePosition: &entity.Position{X: 1, Y: 2}}}, true, false},
		{"no face", &fakeFaceService{result: &entity.DetectionResult{Status: "no_face"}}, false, false},
		{"service error", &fakeFaceService{err: errors.New("connection refused")}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classifier := NewRemoteClassifier(tt.service, utils.New())

			present, err := classifier.IsFacePresent(context.Background(), frame)
			if (err != nil) != tt.wantErr {
				t.Fatalf("IsFacePresent() error = %v, wantErr %v", err, tt.wantErr)
			}
			if present != tt.present {
				t.Errorf("IsFacePresent() = %v, want %v", present, tt.present)
			}
			if len(tt.service.frames) != 1 || len(tt.service.frames[0]) == 0 {
				t.Errorf("expected one encoded frame to be sent, got %d", len(tt.service.frames))
			}
		})
	}
}

func TestRemoteClassifierRejectsEmptyFrame(t *testing.T) {
	service := &fakeFaceService{result: &entity.DetectionResult{FaceCount: 1}}
	classifier := NewRemoteClassifier(service, utils.New())

	if _, err := classifier.IsFacePresent(context.Background(), entity.Frame{}); err == nil {
		t.Fatal("expected an encoding error for a frame without an image")
	}
	if len(service.frames) != 0 {
		t.Error("nothing should reach the face service")
	}
}
