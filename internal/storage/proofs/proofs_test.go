package proofs

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/trading-academy/internal/lib/apperr"
)

type PutterMock struct {
	mock.Mock
}

func (m *PutterMock) PutObject(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.PutObjectOutput)
	return out, args.Error(1)
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestStore_Upload(t *testing.T) {
	ctx := context.Background()

	t.Run("png is stored under user prefix", func(t *testing.T) {
		putter := new(PutterMock)
		putter.On("PutObject", ctx, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
			return aws.ToString(in.Bucket) == "proofs-bucket" &&
				aws.ToString(in.ContentType) == "image/png" &&
				strings.HasPrefix(aws.ToString(in.Key), "proofs/ivan-petrov/")
		})).Return(&s3.PutObjectOutput{}, nil).Once()

		store := New(putter, "proofs-bucket", 1024)
		key, err := store.Upload(ctx, "Ivan Petrov", bytes.NewReader(pngHeader))
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(key, ".png"))
		putter.AssertExpectations(t)
	})

	tests := []struct {
		name    string
		maxSize int64
		body    []byte
	}{
		{name: "empty", maxSize: 1024, body: nil},
		{name: "too large", maxSize: 8, body: pngHeader},
		{name: "plain text", maxSize: 1024, body: []byte("hello, this is not an image")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			putter := new(PutterMock)
			store := New(putter, "b", tt.maxSize)
			_, err := store.Upload(ctx, "user", bytes.NewReader(tt.body))
			assert.ErrorIs(t, err, apperr.ErrValidation)
			putter.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything)
		})
	}

	t.Run("s3 failure", func(t *testing.T) {
		putter := new(PutterMock)
		putter.On("PutObject", ctx, mock.Anything).Return(nil, errors.New("access denied")).Once()
		store := New(putter, "b", 1024)
		_, err := store.Upload(ctx, "user", bytes.NewReader(pngHeader))
		require.Error(t, err)
		assert.NotErrorIs(t, err, apperr.ErrValidation)
	})
}
