package artifact_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"acordex/internal/artifact"
	"acordex/internal/domain"
	"acordex/internal/port"
	"acordex/mocks"
)

func TestStore_Key(t *testing.T) {
	s := artifact.NewStore(new(mocks.MockObjectStorage), "bucket", "extractions")
	at := time.Date(2024, time.March, 7, 23, 30, 0, 0, time.FixedZone("EST", -5*3600))

	assert.Equal(t, "extractions/2024/03/08/req-1.json", s.Key("req-1", at))
}

func TestStore_Save(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == "bucket" &&
			strings.HasPrefix(in.Key, "extractions/") &&
			strings.HasSuffix(in.Key, "/req-1.json") &&
			in.ContentType == "application/json" &&
			in.Size == 2
	})).Return(&port.UploadOutput{Location: "s3://bucket/x"}, nil)

	s := artifact.NewStore(storage, "bucket", "extractions")
	key, err := s.Save(context.Background(), "req-1", strings.NewReader("{}"), 2)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(key, "/req-1.json"))
	storage.AssertExpectations(t)
}

func TestStore_SaveFailure(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	storage.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

	s := artifact.NewStore(storage, "bucket", "extractions")
	_, err := s.Save(context.Background(), "req-1", strings.NewReader("{}"), 2)
	assert.ErrorIs(t, err, domain.ErrArtifactUpload)
	assert.Contains(t, err.Error(), "access denied")
}

func TestStore_Ping(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	storage.On("BucketExists", mock.Anything, "bucket").Return(nil)

	s := artifact.NewStore(storage, "bucket", "extractions")
	assert.NoError(t, s.Ping(context.Background()))
}
