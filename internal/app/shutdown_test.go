package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oakmart/storefront/internal/app"
)

func TestTeardownRunsInOrder(t *testing.T) {
	var order []string

	var td app.Teardown
	td.Add("first", func() error {
		order = append(order, "first")
		return nil
	})
	td.Add("second", func() error {
		order = append(order, "second")
		return nil
	})

	td.Execute(context.Background())

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestTeardownContinuesAfterFailure(t *testing.T) {
	var order []string

	var td app.Teardown
	td.Add("failing", func() error {
		order = append(order, "failing")
		return errors.New("nope")
	})
	td.Add("after", func() error {
		order = append(order, "after")
		return nil
	})

	td.Execute(context.Background())

	assert.Equal(t, []string{"failing", "after"}, order)
}

type closeRecorder struct {
	closed bool
}

func (c *closeRecorder) Close() {
	c.closed = true
}

func TestTeardownIgnoresNilSteps(t *testing.T) {
	var td app.Teardown
	td.Add("nil step", nil)
	td.AddContext("nil context step", nil)

	closer := &closeRecorder{}
	td.AddClose("closer", closer)

	td.Execute(context.Background())

	assert.True(t, closer.closed)
}
