package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateRecognizer(); err != nil {
		return err
	}
	if err := c.validateTiming(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case StorageBackendLocal:
		if strings.TrimSpace(c.Paths.ObjectsDir) == "" {
			return errors.New("paths.objects_dir must be set when storage.backend is local")
		}
	case StorageBackendS3:
		if c.Storage.Bucket == "" {
			return errors.New("storage.bucket must be set when storage.backend is s3")
		}
		if c.Storage.Region == "" {
			return errors.New("storage.region must be set when storage.backend is s3 (or set AWS_REGION)")
		}
	default:
		return fmt.Errorf("storage.backend must be %q or %q, got %q", StorageBackendLocal, StorageBackendS3, c.Storage.Backend)
	}
	return nil
}

func (c *Config) validateRecognizer() error {
	switch c.Recognizer.Backend {
	case RecognizerBackendSniff:
	case RecognizerBackendRekognition:
		// DetectLabels reads the object straight from S3.
		if c.Storage.Backend != StorageBackendS3 {
			return errors.New("recognizer.backend rekognition requires storage.backend s3")
		}
	default:
		return fmt.Errorf("recognizer.backend must be %q or %q, got %q", RecognizerBackendSniff, RecognizerBackendRekognition, c.Recognizer.Backend)
	}
	if c.Recognizer.MaxBlobMiB <= 0 {
		return errors.New("recognizer.max_blob_mib must be positive")
	}
	if c.Recognizer.MaxLabels <= 0 {
		return errors.New("recognizer.max_labels must be positive")
	}
	if c.Recognizer.MinConfidence < 0 || c.Recognizer.MinConfidence > 100 {
		return errors.New("recognizer.min_confidence must be between 0 and 100")
	}
	return nil
}

func (c *Config) validateTiming() error {
	return ensurePositiveMap(map[string]int{
		"callback.request_timeout": c.Callback.RequestTimeout,
		"workflow.upload_window":   c.Workflow.UploadWindow,
	})
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
