package export

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blockblob"

	"github.com/cryptogamefiverse/nftdash/internal/config"
	"github.com/cryptogamefiverse/nftdash/internal/constants"
	"github.com/cryptogamefiverse/nftdash/internal/http"
)

// AzureSink uploads an export as a block blob.
type AzureSink struct {
	client    *azblob.Client
	container string
	blob      string
}

// NewAzureSink builds a blob client for cfg.AzureAccountURL. With
// NFTDASH_AZURE_ACCOUNT_KEY set it authenticates with the shared key,
// otherwise the URL must carry a SAS token.
func NewAzureSink(cfg *config.Config, container, blobName string) (*AzureSink, error) {
	if cfg.AzureAccountURL == "" {
		return nil, config.ErrMissingAzureAccount
	}
	accountURL, err := url.Parse(cfg.AzureAccountURL)
	if err != nil || accountURL.Host == "" {
		return nil, fmt.Errorf("invalid azure_account_url %q", cfg.AzureAccountURL)
	}

	httpClient, err := http.CreateClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}
	httpClient.Timeout = 0

	opts := &azblob.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Transport: httpClient,
			// retries are handled by uploadWithRetry
			Retry: policy.RetryOptions{MaxRetries: -1},
		},
	}

	var client *azblob.Client
	if key := os.Getenv(constants.AzureAccountKeyEnvVar); key != "" {
		accountName := strings.SplitN(accountURL.Host, ".", 2)[0]
		cred, err := azblob.NewSharedKeyCredential(accountName, key)
		if err != nil {
			return nil, fmt.Errorf("invalid Azure account key: %w", err)
		}
		client, err = azblob.NewClientWithSharedKeyCredential(cfg.AzureAccountURL, cred, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure client: %w", err)
		}
	} else {
		client, err = azblob.NewClientWithNoCredential(cfg.AzureAccountURL, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure client: %w", err)
		}
	}

	return &AzureSink{
		client:    client,
		container: container,
		blob:      blobName,
	}, nil
}

func (s *AzureSink) Write(ctx context.Context, data []byte) error {
	contentType := constants.ExportContentType
	return uploadWithRetry(ctx, s, func() error {
		_, err := s.client.UploadBuffer(ctx, s.container, s.blob, data, &blockblob.UploadBufferOptions{
			HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
		})
		if err != nil {
			return fmt.Errorf("upload %s: %w", s, err)
		}
		return nil
	})
}

func (s *AzureSink) String() string {
	return "azblob://" + s.container + "/" + s.blob
}
