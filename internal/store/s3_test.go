package store

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestS3Store_Get_Success(t *testing.T) {
	client := &mockS3{}
	s := NewS3Store(client, "state")
	ctx := context.Background()

	client.On("GetObject", ctx, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return aws.ToString(in.Bucket) == "state" && aws.ToString(in.Key) == "configurator/wallet"
	})).Return(&s3.GetObjectOutput{
		Body: io.NopCloser(strings.NewReader(`{"schema_version":1}`)),
		ETag: aws.String(`"abc"`),
	}, nil)

	b, err := s.Get(ctx, "configurator/wallet")
	require.NoError(t, err)
	assert.Equal(t, `{"schema_version":1}`, string(b.Data))
	assert.Equal(t, `"abc"`, b.Version)
	client.AssertExpectations(t)
}

func TestS3Store_Get_NotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"typed", &s3types.NoSuchKey{}},
		{"generic", &smithy.GenericAPIError{Code: "NotFound"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockS3{}
			s := NewS3Store(client, "state")
			client.On("GetObject", mock.Anything, mock.Anything).Return(nil, tt.err)

			_, err := s.Get(context.Background(), "k")
			assert.True(t, errors.Is(err, ErrNotFound))
		})
	}
}

func TestS3Store_Get_OtherError(t *testing.T) {
	client := &mockS3{}
	s := NewS3Store(client, "state")
	client.On("GetObject", mock.Anything, mock.Anything).Return(nil, &smithy.GenericAPIError{Code: "AccessDenied"})

	_, err := s.Get(context.Background(), "k")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestS3Store_Put_CreateOnly(t *testing.T) {
	client := &mockS3{}
	s := NewS3Store(client, "state")
	ctx := context.Background()

	client.On("PutObject", ctx, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.IfNoneMatch) == "*" && in.IfMatch == nil
	})).Return(&s3.PutObjectOutput{ETag: aws.String(`"v1"`)}, nil)

	v, err := s.Put(ctx, "k", []byte("x"), "")
	require.NoError(t, err)
	assert.Equal(t, `"v1"`, v)
	client.AssertExpectations(t)
}

func TestS3Store_Put_IfMatch(t *testing.T) {
	client := &mockS3{}
	s := NewS3Store(client, "state")
	ctx := context.Background()

	client.On("PutObject", ctx, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.IfMatch) == `"v1"` && in.IfNoneMatch == nil
	})).Return(&s3.PutObjectOutput{ETag: aws.String(`"v2"`)}, nil)

	v, err := s.Put(ctx, "k", []byte("x"), `"v1"`)
	require.NoError(t, err)
	assert.Equal(t, `"v2"`, v)
}

func TestS3Store_Put_PreconditionFailed(t *testing.T) {
	for _, code := range []string{"PreconditionFailed", "ConditionalRequestConflict"} {
		t.Run(code, func(t *testing.T) {
			client := &mockS3{}
			s := NewS3Store(client, "state")
			client.On("PutObject", mock.Anything, mock.Anything).Return(nil, &smithy.GenericAPIError{Code: code})

			_, err := s.Put(context.Background(), "k", []byte("x"), `"v1"`)
			assert.True(t, errors.Is(err, ErrVersionConflict))
		})
	}
}

func TestS3Store_Ping(t *testing.T) {
	client := &mockS3{}
	s := NewS3Store(client, "state")

	client.On("HeadBucket", mock.Anything, mock.Anything).Return(nil, errors.New("no route to host")).Once()
	err := s.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "head bucket state")

	client.On("HeadBucket", mock.Anything, mock.Anything).Return(&s3.HeadBucketOutput{}, nil).Once()
	assert.NoError(t, s.Ping(context.Background()))
}

func TestNewS3Client(t *testing.T) {
	c := NewS3Client("http://localhost:7480", "us-east-1", "key", "secret")
	require.NotNil(t, c)
	assert.Equal(t, "us-east-1", c.Options().Region)
	assert.True(t, c.Options().UsePathStyle)
}
