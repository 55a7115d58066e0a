package s3

import (
	"DrowsyWatch/pkg/utils"
	"bytes"
	"fmt"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"os"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
)

type ItfS3 interface {
	UploadSnapshot(deviceID string, takenAt time.Time, jpeg []byte) (string, error)
}

type uploader interface {
	Upload(input *s3manager.UploadInput, options ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error)
}

type s3Client struct {
	uploader   uploader
	bucketName string
}

// New returns nil, nil when AWS_BUCKET_NAME is unset: snapshots are optional.
func New() (ItfS3, error) {
	bucket := os.Getenv("AWS_BUCKET_NAME")
	if bucket == "" {
		return nil, nil
	}

	sess, err := newSession()
	if err != nil {
		return nil, err
	}

	return &s3Client{
		uploader:   s3manager.NewUploader(sess),
		bucketName: bucket,
	}, nil
}

func (s *s3Client) UploadSnapshot(deviceID string, takenAt time.Time, jpeg []byte) (string, error) {
	uploadOutput, err := s.uploader.Upload(&s3manager.UploadInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(snapshotKey(deviceID, takenAt)),
		Body:        bytes.NewReader(jpeg),
		ContentType: aws.String("image/jpeg"),
	})
	if err != nil {
		return "", fmt.Errorf("upload snapshot: %w", err)
	}

	return uploadOutput.Location, nil
}

func snapshotKey(deviceID string, takenAt time.Time) string {
	return fmt.Sprintf("snapshots/%s/%s.jpg", utils.Slug(deviceID), takenAt.UTC().Format("20060102T150405.000Z"))
}

func newSession() (*session.Session, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(os.Getenv("AWS_REGION")),
		Credentials: credentials.NewStaticCredentials(
			os.Getenv("AWS_ACCESS_KEY_ID"),
			os.Getenv("AWS_SECRET_ACCESS_KEY"),
			"",
		),
	})

	if err != nil {
		return nil, err
	}

	return sess, nil
}
