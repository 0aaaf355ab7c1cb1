package services

import (
	"context"
	"fmt"
	"sync"
)

// MockS3Service is an in-memory S3Interface for testing
type MockS3Service struct {
	objects    map[string][]byte
	types      map[string]string
	presignErr error
	mu         sync.RWMutex
}

// NewMockS3Service creates a new mock S3 service
func NewMockS3Service() *MockS3Service {
	return &MockS3Service{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

// FailPresign makes GetPresignedURL return err
func (m *MockS3Service) FailPresign(err error) {
	m.mu.Lock()
	m.presignErr = err
	m.mu.Unlock()
}

// PutObject stores content in memory
func (m *MockS3Service) PutObject(ctx context.Context, key string, content []byte, contentType string) error {
	m.mu.Lock()
	m.objects[key] = append([]byte(nil), content...)
	m.types[key] = contentType
	m.mu.Unlock()
	return nil
}

// GetPresignedURL returns a fake link for a stored object
func (m *MockS3Service) GetPresignedURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.presignErr != nil {
		return "", m.presignErr
	}
	if _, exists := m.objects[key]; !exists {
		return "", fmt.Errorf("file not found in mock S3: %s", key)
	}
	return fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/%s?mock=true", key), nil
}

// DeleteObject removes key from memory
func (m *MockS3Service) DeleteObject(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}

	m.mu.Lock()
	delete(m.objects, key)
	delete(m.types, key)
	m.mu.Unlock()
	return nil
}

// ContentType returns the content type an object was stored with
func (m *MockS3Service) ContentType(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.types[key]
}

// FileExists checks if an object exists in mock storage
func (m *MockS3Service) FileExists(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.objects[key]
	return exists
}

// Keys returns every stored key (for testing assertions)
func (m *MockS3Service) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys
}
