package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/cryptogamefiverse/nftdash/internal/config"
	"github.com/cryptogamefiverse/nftdash/internal/http"
)

// Sink is a destination for one encoded export.
type Sink interface {
	Write(ctx context.Context, data []byte) error
	String() string
}

// Open parses dest and returns the matching sink:
//
//	-                       standard output
//	path, file://path       local file
//	s3://bucket/key         S3 object (region from [export] aws_region)
//	azblob://container/blob Azure blob (account from [export] azure_account_url)
func Open(ctx context.Context, dest string, cfg *config.Config) (Sink, error) {
	switch {
	case dest == "" || dest == "-":
		return &writerSink{w: os.Stdout, name: "stdout"}, nil

	case strings.HasPrefix(dest, "s3://"):
		bucket, key, err := splitObjectURL(dest, "s3://")
		if err != nil {
			return nil, err
		}
		return NewS3Sink(ctx, cfg, bucket, key)

	case strings.HasPrefix(dest, "azblob://"):
		container, blob, err := splitObjectURL(dest, "azblob://")
		if err != nil {
			return nil, err
		}
		return NewAzureSink(cfg, container, blob)

	case strings.Contains(dest, "://") && !strings.HasPrefix(dest, "file://"):
		return nil, fmt.Errorf("unsupported export destination: %s", dest)

	default:
		return &fileSink{path: strings.TrimPrefix(dest, "file://")}, nil
	}
}

func splitObjectURL(dest, scheme string) (string, string, error) {
	rest := strings.TrimPrefix(dest, scheme)
	container, key, ok := strings.Cut(rest, "/")
	if !ok || container == "" || key == "" {
		return "", "", fmt.Errorf("invalid destination %s: want %sCONTAINER/KEY", dest, scheme)
	}
	return container, key, nil
}

// uploadWithRetry retries transient upload failures with full-jitter backoff.
func uploadWithRetry(ctx context.Context, sink Sink, op func() error) error {
	cfg := http.DefaultConfig()
	cfg.OnRetry = func(attempt int, err error, errType http.ErrorType) {
		log.Warn().
			Err(err).
			Str("dest", sink.String()).
			Int("attempt", attempt).
			Str("class", http.ErrorTypeName(errType)).
			Msg("Export upload failed, retrying")
	}
	return http.ExecuteWithRetry(ctx, cfg, op)
}

type writerSink struct {
	w    io.Writer
	name string
}

func (s *writerSink) Write(_ context.Context, data []byte) error {
	_, err := s.w.Write(data)
	return err
}

func (s *writerSink) String() string { return s.name }

// fileSink writes atomically via a temp file and rename.
type fileSink struct {
	path string
}

func (s *fileSink) Write(_ context.Context, data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".nftdash-export-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close export: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move export into place: %w", err)
	}
	return nil
}

func (s *fileSink) String() string { return s.path }
