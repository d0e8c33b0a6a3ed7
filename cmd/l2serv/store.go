package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// how many of a site's most recent archives are listed
const recentFiles = 30

// Store is where archives and volume chunks are read from
type Store interface {
	// Sites with data from yesterday
	Sites(ctx context.Context) ([]string, error)
	// Files returns the names of the most recent archives of a site
	Files(ctx context.Context, site string) ([]string, error)
	// Archive opens an archive by file name, eg KOKX20210902_000428_V06
	Archive(ctx context.Context, fn string) (io.ReadCloser, error)
	// Chunks returns the object keys of one volume's chunks, in order
	Chunks(ctx context.Context, site string, volume int) ([]string, error)
	// Chunk opens a chunk by key
	Chunk(ctx context.Context, key string) (io.ReadCloser, error)
}

type s3Store struct {
	svc         *s3.S3
	bucket      string
	chunkBucket string
	now         func() time.Time
}

func newS3Store(region, bucket, chunkBucket string) (*s3Store, error) {
	sess, err := session.NewSession(&aws.Config{
		Credentials: credentials.AnonymousCredentials,
		Region:      aws.String(region),
	})
	if err != nil {
		return nil, err
	}
	return &s3Store{
		svc:         s3.New(sess),
		bucket:      bucket,
		chunkBucket: chunkBucket,
		now:         time.Now,
	}, nil
}

func (s *s3Store) Sites(ctx context.Context) ([]string, error) {
	// check yesterday to get a list of all radars
	t := s.now().UTC().AddDate(0, 0, -1)
	resp, err := s.svc.ListObjectsV2WithContext(ctx, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(t.Format("2006/01/02/")),
		Delimiter: aws.String("/"),
	})
	if err != nil {
		return nil, err
	}

	sites := make([]string, 0, len(resp.CommonPrefixes))
	for _, d := range resp.CommonPrefixes {
		sites = append(sites, filepath.Base(*d.Prefix))
	}
	return sites, nil
}

func (s *s3Store) list(ctx context.Context, bucket, prefix string) ([]string, error) {
	keys := []string{}
	err := s.svc.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, d := range page.Contents {
			keys = append(keys, *d.Key)
		}
		return true
	})
	return keys, err
}

func (s *s3Store) Files(ctx context.Context, site string) ([]string, error) {
	now := s.now().UTC()
	keys, err := s.list(ctx, s.bucket, now.Format("2006/01/02/")+site)
	if err != nil {
		return nil, err
	}

	// early in the day, fill in from yesterday
	if len(keys) < recentFiles {
		past, err := s.list(ctx, s.bucket, now.AddDate(0, 0, -1).Format("2006/01/02/")+site)
		if err != nil {
			return nil, err
		}
		keys = append(past, keys...)
	}
	if len(keys) > recentFiles {
		keys = keys[len(keys)-recentFiles:]
	}

	files := make([]string, len(keys))
	for i, key := range keys {
		files[i] = filepath.Base(key)
	}
	return files, nil
}

// archiveKey maps an archive name like KOKX20210902_000428_V06 to its key in the bucket
func archiveKey(fn string) (string, error) {
	if len(fn) < 19 {
		return "", fmt.Errorf("invalid archive name %q", fn)
	}
	site := fn[:4]
	date, err := time.Parse("20060102_150405", fn[4:19])
	if err != nil {
		return "", fmt.Errorf("invalid archive name %q: %w", fn, err)
	}
	return date.Format("2006/01/02/") + site + "/" + fn, nil
}

func (s *s3Store) get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	obj, err := s.svc.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	return obj.Body, nil
}

func (s *s3Store) Archive(ctx context.Context, fn string) (io.ReadCloser, error) {
	key, err := archiveKey(fn)
	if err != nil {
		return nil, err
	}
	return s.get(ctx, s.bucket, key)
}

func (s *s3Store) Chunks(ctx context.Context, site string, volume int) ([]string, error) {
	keys, err := s.list(ctx, s.chunkBucket, fmt.Sprintf("%s/%d/", site, volume))
	if err != nil {
		return nil, err
	}
	// chunk keys carry their sequence number, eg KTLX/12/20210902-000428-001-S
	sort.Strings(keys)
	return keys, nil
}

func (s *s3Store) Chunk(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.get(ctx, s.chunkBucket, key)
}
