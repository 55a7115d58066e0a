package s3

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

type fakeUploader struct {
	input *s3manager.UploadInput
	body  []byte
	err   error
}

func (f *fakeUploader) Upload(input *s3manager.UploadInput, _ ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	f.input = input
	f.body, _ = io.ReadAll(input.Body)
	if f.err != nil {
		return nil, f.err
	}
	return &s3manager.UploadOutput{Location: "https://bucket.s3.amazonaws.com/" + aws.StringValue(input.Key)}, nil
}

func TestUploadSnapshot(t *testing.T) {
	up := &fakeUploader{}
	client := &s3Client{uploader: up, bucketName: "frames"}
	takenAt := time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC)

	location, err := client.UploadSnapshot("http://cam/1", takenAt, []byte("jpeg"))
	if err != nil {
		t.Fatalf("UploadSnapshot failed: %v", err)
	}

	key := aws.StringValue(up.input.Key)
	if key != "snapshots/http___cam_1/20240301T102030.000Z.jpg" {
		t.Errorf("unexpected key %q", key)
	}
	if aws.StringValue(up.input.Bucket) != "frames" {
		t.Errorf("unexpected bucket %q", aws.StringValue(up.input.Bucket))
	}
	if string(up.body) != "jpeg" {
		t.Errorf("unexpected body %q", up.body)
	}
	if !strings.HasSuffix(location, key) {
		t.Errorf("location %q does not end with key", location)
	}
}

func TestUploadSnapshotError(t *testing.T) {
	client := &s3Client{uploader: &fakeUploader{err: errors.New("denied")}, bucketName: "frames"}

	if _, err := client.UploadSnapshot("0", time.Now(), []byte("x")); err == nil {
		t.Fatal("expected upload error")
	}
}
