package problems

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/klauspost/compress/zstd"
)

// S3DownloadFunc returns a DownloadFunc backed by S3. Objects with a
// .zst suffix or zstd content type are decompressed transparently.
func S3DownloadFunc(region string) (DownloadFunc, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	s3Client := s3.NewFromConfig(cfg)

	return func(s3Url string, path string) error {
		u, err := url.Parse(s3Url)
		if err != nil {
			return fmt.Errorf("failed to parse s3 url %s: %w", s3Url, err)
		}
		if u.Scheme != "https" {
			return fmt.Errorf("invalid s3 url scheme: %s", u.Scheme)
		}

		// bucket.s3.region.amazonaws.com
		hostParts := strings.Split(u.Host, ".")
		if len(hostParts) < 3 || hostParts[1] != "s3" {
			return fmt.Errorf("invalid s3 url host format: %s", u.Host)
		}
		bucket := hostParts[0]
		key := strings.TrimPrefix(u.Path, "/")

		out, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create file %s: %w", path, err)
		}
		defer out.Close()

		obj, err := s3Client.GetObject(context.TODO(), &s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return fmt.Errorf("failed to download %s from s3 (bucket: %s, key: %s): %w",
				s3Url, bucket, key, err)
		}
		defer obj.Body.Close()

		var body io.Reader = obj.Body
		if (obj.ContentType != nil && *obj.ContentType == "application/zstd") ||
			filepath.Ext(u.Path) == ".zst" {
			d, err := zstd.NewReader(obj.Body)
			if err != nil {
				return fmt.Errorf("failed to create zstd reader: %w", err)
			}
			defer d.Close()
			body = d
		}

		if _, err := io.Copy(out, body); err != nil {
			return fmt.Errorf("failed to write file %s: %w", path, err)
		}
		return nil
	}, nil
}
