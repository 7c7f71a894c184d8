package bootstrap

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunHooks(t *testing.T) {
	var order []string
	hooks := []ShutdownHook{
		func(context.Context) error { order = append(order, "database"); return nil },
		func(context.Context) error { order = append(order, "redis"); return errors.New("already closed") },
		func(context.Context) error { order = append(order, "kafka"); return nil },
	}

	runHooks(context.Background(), hooks)

	assert.Equal(t, []string{"kafka", "redis", "database"}, order)
}
