package driver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/usher/internal/page"
)

type fakeFactory struct{}

func (fakeFactory) Open(context.Context, string, string, string) (page.Handle, error) {
	return nil, nil
}

func TestRegisterAndDefault(t *testing.T) {
	t.Cleanup(func() { Register(nil) })

	require.Nil(t, Default())

	Register(fakeFactory{})
	require.NotNil(t, Default())
}
