package kv

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string][]byte
	failGet error

	LastBucket string
}

func newFakeS3() *fakeS3 { return &fakeS3{objects: map[string][]byte{}} }

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.LastBucket = aws.ToString(in.Bucket)
	if f.failGet != nil {
		return nil, f.failGet
	}
	v, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(v))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.LastBucket = aws.ToString(in.Bucket)
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = b
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func TestS3_Roundtrip(t *testing.T) {
	fake := newFakeS3()
	fake.objects["other/keep"] = []byte("x")
	r := NewS3Repository(fake, "dash", "gophdash/")
	ctx := context.Background()

	v, err := r.Get(ctx, "accessToken")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, r.Set(ctx, "accessToken", []byte("tok")))
	assert.Equal(t, "dash", fake.LastBucket)
	assert.Contains(t, fake.objects, "gophdash/accessToken")

	v, err = r.Get(ctx, "accessToken")
	require.NoError(t, err)
	assert.Equal(t, []byte("tok"), v)

	require.NoError(t, r.Set(ctx, "token_meta_tok", []byte("{}")))
	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"accessToken": []byte("tok"), "token_meta_tok": []byte("{}")}, m)

	require.NoError(t, r.Delete(ctx, "accessToken"))
	require.NoError(t, r.Clear(ctx))
	assert.Equal(t, map[string][]byte{"other/keep": []byte("x")}, fake.objects)
}

func TestS3_GetError(t *testing.T) {
	fake := newFakeS3()
	fake.failGet = errors.New("access denied")
	r := NewS3Repository(fake, "dash", "")

	_, err := r.Get(context.Background(), "k")
	require.ErrorContains(t, err, "failed to get key[k]: access denied")
}
