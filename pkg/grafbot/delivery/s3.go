// SPDX-License-Identifier: AGPL-3.0-only

package delivery

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/grafana/grafbot/pkg/grafbot/query"
)

// S3UploaderConfig configures the S3 destination.
type S3UploaderConfig struct {
	Bucket string
	Prefix string
	Region string
}

// S3Uploader copies rendered images into an S3 bucket and replies with the
// public object URL instead of the renderer URL.
type S3Uploader struct {
	cfg        S3UploaderConfig
	s3         *s3.Client
	downloader Downloader
	out        io.Writer
}

// NewS3Uploader builds an uploader using the ambient AWS credential chain.
func NewS3Uploader(ctx context.Context, cfg S3UploaderConfig, downloader Downloader, out io.Writer) (*S3Uploader, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, errors.Wrap(err, "loading AWS configuration")
	}

	return &S3Uploader{
		cfg:        cfg,
		s3:         s3.NewFromConfig(awsCfg),
		downloader: downloader,
		out:        out,
	}, nil
}

func (u *S3Uploader) Name() string { return "s3" }

func (u *S3Uploader) Send(ctx context.Context, _ string, chart query.Chart) (err error) {
	defer func() { observe(u.Name(), err) }()

	file, err := u.downloader.Download(ctx, chart.ImageURL)
	if err != nil {
		return errors.Wrap(err, "downloading rendered image")
	}

	key := u.objectKey()
	_, err = u.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(file.Body),
		ACL:           s3types.ObjectCannedACLPublicRead,
		ContentLength: aws.Int64(int64(len(file.Body))),
		ContentType:   aws.String(file.ContentType),
	})
	if err != nil {
		return errors.Wrapf(err, "uploading %d bytes to bucket %s", len(file.Body), u.cfg.Bucket)
	}

	publicURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.cfg.Bucket, u.cfg.Region, key)
	log.WithFields(log.Fields{"key": key, "bytes": len(file.Body)}).Debugln("uploaded chart to S3")

	_, err = fmt.Fprintf(u.out, "%s: %s - %s\n", chart.Title, publicURL, chart.Link)
	return err
}

func (u *S3Uploader) objectKey() string {
	prefix := u.cfg.Prefix
	if prefix == "" {
		prefix = "grafana"
	}
	return prefix + "/" + uuid.NewString() + ".png"
}
