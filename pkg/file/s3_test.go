package file_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailcanvas/pkg/file"
)

type MockS3Client struct {
	mock.Mock
}

func (m *MockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.PutObjectOutput)
	return out, args.Error(1)
}

func (m *MockS3Client) GetObject(ctx context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.GetObjectOutput)
	return out, args.Error(1)
}

func (m *MockS3Client) HeadObject(ctx context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.HeadObjectOutput)
	return out, args.Error(1)
}

func (m *MockS3Client) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.ListObjectsV2Output)
	return out, args.Error(1)
}

func (m *MockS3Client) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.DeleteObjectOutput)
	return out, args.Error(1)
}

func newS3(t *testing.T) (*file.S3Storage, *MockS3Client) {
	t.Helper()
	client := &MockS3Client{}
	t.Cleanup(func() { client.AssertExpectations(t) })
	s, err := file.NewS3Storage(context.Background(), file.S3Config{
		Bucket: "mail",
		Region: "eu-west-1",
	}, file.WithS3Client(client))
	require.NoError(t, err)
	return s, client
}

func TestNewS3Storage_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := file.NewS3Storage(context.Background(), file.S3Config{Region: "x"})
	assert.ErrorIs(t, err, file.ErrInvalidConfig)
}

func TestS3Storage_Put(t *testing.T) {
	t.Parallel()

	s, client := newS3(t)
	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Bucket) == "mail" &&
			aws.ToString(in.Key) == "documents/a.json" &&
			aws.ToString(in.ContentType) == "application/json" &&
			aws.ToInt64(in.ContentLength) == 2
	})).Return(&s3.PutObjectOutput{}, nil).Once()

	require.NoError(t, s.Put(context.Background(), "/documents/a.json", []byte("{}"), "application/json"))
	assert.ErrorIs(t, s.Put(context.Background(), "../a", nil, ""), file.ErrInvalidPath)
}

func TestS3Storage_Get(t *testing.T) {
	t.Parallel()

	s, client := newS3(t)
	client.On("GetObject", mock.Anything, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return aws.ToString(in.Key) == "templates/ad.html"
	})).Return(&s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader("<html/>"))}, nil).Once()
	client.On("GetObject", mock.Anything, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return aws.ToString(in.Key) == "missing.html"
	})).Return(nil, &types.NoSuchKey{}).Once()

	data, err := s.Get(context.Background(), "templates/ad.html")
	require.NoError(t, err)
	assert.Equal(t, "<html/>", string(data))

	_, err = s.Get(context.Background(), "missing.html")
	assert.ErrorIs(t, err, file.ErrFileNotFound)
}

func TestS3Storage_DeleteExists(t *testing.T) {
	t.Parallel()

	s, client := newS3(t)
	client.On("HeadObject", mock.Anything, mock.MatchedBy(func(in *s3.HeadObjectInput) bool {
		return aws.ToString(in.Key) == "a.json"
	})).Return(&s3.HeadObjectOutput{}, nil).Twice()
	client.On("HeadObject", mock.Anything, mock.MatchedBy(func(in *s3.HeadObjectInput) bool {
		return aws.ToString(in.Key) == "b.json"
	})).Return(nil, &types.NotFound{}).Twice()
	client.On("DeleteObject", mock.Anything, mock.Anything).Return(&s3.DeleteObjectOutput{}, nil).Once()

	assert.True(t, s.Exists(context.Background(), "a.json"))
	assert.False(t, s.Exists(context.Background(), "b.json"))
	require.NoError(t, s.Delete(context.Background(), "a.json"))
	assert.ErrorIs(t, s.Delete(context.Background(), "b.json"), file.ErrFileNotFound)
}

func TestS3Storage_List(t *testing.T) {
	t.Parallel()

	s, client := newS3(t)
	mod := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	client.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return aws.ToString(in.Prefix) == "documents/" && aws.ToString(in.Delimiter) == "/"
	})).Return(&s3.ListObjectsV2Output{
		CommonPrefixes: []types.CommonPrefix{{Prefix: aws.String("documents/archive/")}},
		Contents: []types.Object{
			{Key: aws.String("documents/"), Size: aws.Int64(0)},
			{Key: aws.String("documents/a.json"), Size: aws.Int64(12), LastModified: aws.Time(mod)},
		},
	}, nil).Once()

	objs, err := s.List(context.Background(), "documents")
	require.NoError(t, err)
	require.Len(t, objs, 2)
	assert.Equal(t, file.Object{Name: "archive", Path: "documents/archive", IsDir: true}, objs[0])
	assert.Equal(t, file.Object{Name: "a.json", Path: "documents/a.json", Size: 12, ModTime: mod}, objs[1])
}

func TestS3Storage_ErrorClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"access denied", &smithy.GenericAPIError{Code: "AccessDenied"}, file.ErrAccessDenied},
		{"slow down", &smithy.GenericAPIError{Code: "SlowDown"}, file.ErrServiceUnavailable},
		{"no bucket", &types.NoSuchBucket{}, file.ErrBucketNotFound},
		{"timeout", context.DeadlineExceeded, file.ErrOperationTimeout},
		{"canceled", context.Canceled, file.ErrOperationCanceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, client := newS3(t)
			client.On("PutObject", mock.Anything, mock.Anything).Return(nil, tt.err).Once()
			err := s.Put(context.Background(), "a.json", []byte("x"), "")
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("unknown error passes through", func(t *testing.T) {
		t.Parallel()

		s, client := newS3(t)
		boom := errors.New("boom")
		client.On("PutObject", mock.Anything, mock.Anything).Return(nil, boom).Once()
		assert.ErrorIs(t, s.Put(context.Background(), "a.json", nil, ""), boom)
	})
}

func TestS3Storage_URL(t *testing.T) {
	t.Parallel()

	s, _ := newS3(t)
	assert.Equal(t, "https://mail.s3.eu-west-1.amazonaws.com/a/b.html", s.URL("a/b.html"))

	custom, err := file.NewS3Storage(context.Background(), file.S3Config{
		Bucket:   "mail",
		Region:   "us-east-1",
		Endpoint: "http://localhost:9000/",
	}, file.WithS3Client(&MockS3Client{}))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/mail/x", custom.URL("x"))
}
