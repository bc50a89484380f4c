package functions

import (
	"context"
	"encoding/base64"

	"github.com/pkg/errors"
)

// ObjectUploader stores a binary object under a path and returns a durable
// retrieval URL.
type ObjectUploader interface {
	UploadObject(ctx context.Context, path, contentType string, data []byte) (string, error)
}

// UploadObject sends the object to the storage function. The payload travels
// base64-encoded inside the JSON envelope the functions share.
func (c *Client) UploadObject(ctx context.Context, path, contentType string, data []byte) (string, error) {
	var result struct {
		URL string `json:"url"`
	}
	err := c.postJSON(ctx, "/storage/upload", map[string]string{
		"path":         path,
		"content_type": contentType,
		"data":         base64.StdEncoding.EncodeToString(data),
	}, &result)
	if err != nil {
		return "", err
	}
	if result.URL == "" {
		return "", errors.New("upload returned no url")
	}
	return result.URL, nil
}
