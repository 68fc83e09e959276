package repo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestFSErr(t *testing.T) {
	assert.NoError(t, fsErr(nil))
	assert.ErrorIs(t, fsErr(status.Error(codes.NotFound, "no such document")), ErrNotFound)
	assert.ErrorIs(t, fsErr(status.Error(codes.AlreadyExists, "exists")), ErrDuplicate)

	unavailable := status.Error(codes.Unavailable, "backend down")
	assert.Equal(t, unavailable, fsErr(unavailable))

	plain := errors.New("decode failed")
	assert.Equal(t, plain, fsErr(plain))
}
