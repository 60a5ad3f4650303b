package sl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErr(t *testing.T) {
	attr := Err(errors.New("boom"))
	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, "boom", attr.Value.String())
}

func TestUID(t *testing.T) {
	attr := UID("8e3c6f2a-0b1d-4f7e-9c4a-2d5b6e7f8a90")
	assert.Equal(t, "user_uid", attr.Key)
	assert.Equal(t, "8e3c6f2a-0b1d-4f7e-9c4a-2d5b6e7f8a90", attr.Value.String())
}
