package supabase

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	storage "github.com/supabase-community/storage-go"
)

type StorageClient struct {
	client  *storage.Client
	baseURL string
}

func NewStorageClient(supabaseURL, serviceRoleKey string) *StorageClient {
	baseURL := strings.TrimSuffix(supabaseURL, "/")
	client := storage.NewClient(baseURL+"/storage/v1", serviceRoleKey, nil)

	return &StorageClient{
		client:  client,
		baseURL: baseURL,
	}
}

// OrderPrefix is the folder holding every object of one order:
// {user_id}/{order_id}/
func OrderPrefix(userID, orderID uuid.UUID) string {
	return userID.String() + "/" + orderID.String() + "/"
}

// ObjectPath builds {user_id}/{order_id}/{elem...}. Elements are reduced to
// their base name so a client supplied file name cannot escape the folder.
func ObjectPath(userID, orderID uuid.UUID, elem ...string) string {
	parts := make([]string, 0, len(elem))
	for _, e := range elem {
		base := path.Base(strings.ReplaceAll(e, "\\", "/"))
		if base == "." || base == "/" || base == ".." {
			continue
		}
		parts = append(parts, base)
	}
	return OrderPrefix(userID, orderID) + strings.Join(parts, "/")
}

// UploadFile stores data at objectPath, overwriting what is there so a
// retried upload is harmless.
func (s *StorageClient) UploadFile(bucket, objectPath string, data []byte, contentType string) error {
	upsert := true
	_, err := s.client.UploadFile(bucket, objectPath, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s/%s: %w", bucket, objectPath, err)
	}
	return nil
}

// listPageSize is the page size used when listing a prefix.
const listPageSize = 100

// ListFiles returns the full paths of the objects directly under prefix.
// Sub folders are skipped. Pages are requested until a short one comes back.
func (s *StorageClient) ListFiles(bucket, prefix string) ([]string, error) {
	folder := strings.TrimSuffix(prefix, "/")

	var paths []string
	for offset := 0; ; offset += listPageSize {
		files, err := s.client.ListFiles(bucket, prefix, storage.FileSearchOptions{
			Limit:  listPageSize,
			Offset: offset,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list files: %w", err)
		}

		for _, f := range files {
			if f.Id == "" {
				continue
			}
			paths = append(paths, folder+"/"+f.Name)
		}
		if len(files) < listPageSize {
			return paths, nil
		}
	}
}

func (s *StorageClient) RemoveFiles(bucket string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	if _, err := s.client.RemoveFile(bucket, paths); err != nil {
		return fmt.Errorf("failed to delete files: %w", err)
	}
	return nil
}

func (s *StorageClient) DownloadFile(bucket, objectPath string) ([]byte, error) {
	data, err := s.client.DownloadFile(bucket, objectPath)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	return data, nil
}

func (s *StorageClient) SignedURL(bucket, objectPath string, ttl time.Duration) (string, error) {
	resp, err := s.client.CreateSignedUrl(bucket, objectPath, int(ttl.Seconds()))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s/%s: %w", bucket, objectPath, err)
	}
	return resp.SignedURL, nil
}
