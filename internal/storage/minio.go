// Package storage archives the raw uploaded invoice documents in object
// storage. Archival is best-effort: assessments still succeed when no
// object store is configured.
package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var Client *minio.Client
var BucketName string

// Init connects to the object store named by the MINIO_* environment
// variables. Missing credentials leave the client nil and archival off.
func Init() error {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	accessKey := os.Getenv("MINIO_ACCESS_KEY")
	secretKey := os.Getenv("MINIO_SECRET_KEY")

	if endpoint == "" || accessKey == "" || secretKey == "" {
		log.Println("No object storage configuration found - document archival disabled")
		return fmt.Errorf("no object storage configuration")
	}

	BucketName = os.Getenv("MINIO_BUCKET")
	if BucketName == "" {
		BucketName = "export-invoices"
	}

	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, BucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", BucketName)
	}

	Client = client
	return nil
}

// Available reports whether document archival is configured.
func Available() bool { return Client != nil }

// UploadInvoiceDocument archives an uploaded invoice under
// {exporterID}/YYYY/MM/{filename} and returns the stored object path.
func UploadInvoiceDocument(ctx context.Context, exporterID, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	if Client == nil {
		return "", fmt.Errorf("object storage not available")
	}

	now := time.Now()
	objectName := fmt.Sprintf("%s/%d/%02d/%s", exporterID, now.Year(), now.Month(), filename)

	_, err := Client.PutObject(ctx, BucketName, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive document: %w", err)
	}

	return fmt.Sprintf("%s/%s", BucketName, objectName), nil
}

// GetPresignedURL generates a 24h download link for an archived document.
func GetPresignedURL(ctx context.Context, objectPath string) (string, error) {
	if Client == nil {
		return "", fmt.Errorf("object storage not available")
	}

	objectName := trimBucketPrefix(objectPath)
	url, err := Client.PresignedGetObject(ctx, BucketName, objectName, 24*time.Hour, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return url.String(), nil
}

// DeleteDocument removes an archived document.
func DeleteDocument(ctx context.Context, objectPath string) error {
	if Client == nil {
		return fmt.Errorf("object storage not available")
	}
	return Client.RemoveObject(ctx, BucketName, trimBucketPrefix(objectPath), minio.RemoveObjectOptions{})
}

func trimBucketPrefix(objectPath string) string {
	prefix := BucketName + "/"
	if len(objectPath) > len(prefix) && objectPath[:len(prefix)] == prefix {
		return objectPath[len(prefix):]
	}
	return objectPath
}
