package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"time"

	"github.com/heladeria/order-form-api/utils"
	"github.com/rs/zerolog/log"
)

// Receipt identifies an uploaded transfer receipt
type Receipt struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// ReceiptService stores payment receipts for orders paid by transfer
type ReceiptService interface {
	// UploadReceipt validates and stores a receipt, returning its key and a temporary link
	UploadReceipt(ctx context.Context, fileHeader *multipart.FileHeader) (*Receipt, error)

	// DeleteReceipt removes a stored receipt
	DeleteReceipt(ctx context.Context, key string) error
}

// S3ReceiptService implements ReceiptService using S3 for storage
type S3ReceiptService struct {
	storage S3Interface
	now     func() time.Time
}

var receiptServiceInstance ReceiptService

// InitReceiptService initializes the receipt service with an S3 backend
func InitReceiptService(storage S3Interface) ReceiptService {
	receiptServiceInstance = &S3ReceiptService{
		storage: storage,
		now:     time.Now,
	}
	return receiptServiceInstance
}

// GetReceiptService returns the initialized receipt service, nil when uploads are disabled
func GetReceiptService() ReceiptService {
	return receiptServiceInstance
}

// SetReceiptService sets the receipt service instance (primarily for testing)
func SetReceiptService(service ReceiptService) {
	receiptServiceInstance = service
}

// UploadReceipt validates the file, uploads it and presigns a link to it
func (s *S3ReceiptService) UploadReceipt(ctx context.Context, fileHeader *multipart.FileHeader) (*Receipt, error) {
	if err := utils.ValidateReceiptFile(fileHeader); err != nil {
		return nil, err
	}

	content, err := utils.ReadUploadedFile(fileHeader)
	if err != nil {
		return nil, err
	}

	// Format: uploads/receipts/{timestamp}_{filename}
	key := fmt.Sprintf("uploads/receipts/%d_%s", s.now().Unix(), filepath.Base(fileHeader.Filename))

	if err := s.storage.PutObject(ctx, key, content, utils.ReceiptContentType(fileHeader.Filename)); err != nil {
		return nil, fmt.Errorf("failed to upload receipt: %w", err)
	}

	url, err := s.storage.GetPresignedURL(ctx, key)
	if err != nil {
		if delErr := s.DeleteReceipt(ctx, key); delErr != nil {
			log.Warn().Err(delErr).Str("key", key).Msg("failed to clean up receipt after presign error")
		}
		return nil, fmt.Errorf("failed to generate receipt URL: %w", err)
	}

	return &Receipt{Key: key, URL: url}, nil
}

// DeleteReceipt deletes a receipt from storage
func (s *S3ReceiptService) DeleteReceipt(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if err := s.storage.DeleteObject(ctx, key); err != nil {
		return fmt.Errorf("failed to delete receipt: %w", err)
	}
	return nil
}
