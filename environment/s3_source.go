package environment

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/arrowbench/banditbench/cache"
	"github.com/arrowbench/banditbench/encode"
	"github.com/arrowbench/banditbench/pipe"
	"github.com/arrowbench/banditbench/types"
)

// S3Source fetches a tabular dataset (CSV or ARFF, by file extension) from
// an S3 bucket/key, memoizing the download through a Cacher the same way
// OpenMLSource does, so repeat runs against the same dataset don't re-fetch.
type S3Source struct {
	Bucket string
	Key    string
	Region string
	Cacher cache.Cacher

	client *s3.Client
}

func (s *S3Source) ensureClient(ctx context.Context) error {
	if s.client != nil {
		return nil
	}
	opts := []func(*config.LoadOptions) error{}
	if s.Region != "" {
		opts = append(opts, config.WithRegion(s.Region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return &types.EnvironmentError{Kind: types.EnvironmentErrorFetch, Msg: "loading aws config", Err: err}
	}
	s.client = s3.NewFromConfig(cfg)
	return nil
}

func (s *S3Source) cacheKey() string {
	return fmt.Sprintf("s3_%s_%s", s.Bucket, strings.ReplaceAll(s.Key, "/", "_"))
}

func (s *S3Source) fetch(ctx context.Context) ([][]byte, error) {
	if err := s.ensureClient(ctx); err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.Bucket,
		Key:    &s.Key,
	})
	if err != nil {
		return nil, &types.EnvironmentError{Kind: types.EnvironmentErrorFetch, Msg: fmt.Sprintf("s3 get_object s3://%s/%s", s.Bucket, s.Key), Err: err}
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, &types.EnvironmentError{Kind: types.EnvironmentErrorFetch, Msg: "reading s3 object body", Err: err}
	}
	return splitLines(body), nil
}

// Build downloads the object (through the Cacher) and assembles a
// Drop -> Default -> Encode -> Structure pipeline over it, dispatching to
// the CSV or ARFF reader by the key's file extension.
func (s *S3Source) Build(ctx context.Context, target string) (pipe.Source[encode.Structured], *types.EnvParams, error) {
	lines, err := s.Cacher.GetOrPut(s.cacheKey(), func() ([][]byte, error) {
		return s.fetch(ctx)
	})
	if err != nil {
		return nil, nil, err
	}
	raw := joinLines(lines)

	var rowSource pipe.Source[encode.Row]
	switch {
	case strings.HasSuffix(strings.ToLower(s.Key), ".arff"):
		rowSource = encode.NewARFFReader(func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(raw)), nil
		}, encode.ARFFConfig{})
	default:
		rowSource = encode.NewCSVReader(func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(raw)), nil
		}, encode.CSVConfig{HasHeader: true})
	}

	source := pipe.Join[encode.Row, encode.Row](rowSource, encode.Drop{RowPredicate: func(r encode.Row) bool { return r.HasMissing() }})
	source = pipe.Join[encode.Row, encode.Row](source, encode.Default{Values: map[string]types.Value{target: types.String("0")}})
	source = pipe.Join[encode.Row, encode.Row](source, encode.AutoEncode{})
	structured := pipe.Join[encode.Row, encode.Structured](source, encode.Structure{Target: target})

	params := types.NewEnvParams().
		Set("source", "s3").
		Set("bucket", s.Bucket).
		Set("key", s.Key).
		Set("target", target)

	return structured, params, nil
}
