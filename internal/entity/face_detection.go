package entity

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// DetectionResult is the reply of the remote face detection service.
type DetectionResult struct {
	Status       string             `json:"status"`
	Instructions []string           `json:"instructions"`
	FaceCount    int                `json:"face_count"`
	FacePosition *Position          `json:"face_position,omitempty"`
	FaceSize     *float64           `json:"face_size,omitempty"`
	FrameCenter  Position           `json:"frame_center"`
	Deviations   map[string]float64 `json:"deviations,omitempty"`
	Error        string             `json:"error,omitempty"`
}

func (r DetectionResult) FacePresent() bool {
	return r.FaceCount > 0 || r.FacePosition != nil
}
