package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	wrapped := fmt.Errorf("%w: línea L1 pendiente 10, recibido 12", ErrOverReceipt)
	assert.Equal(t, KindOverReceipt, Kind(wrapped))
	assert.Equal(t, KindLotConflict, Kind(ErrLotConflict))
	assert.Equal(t, KindInternal, Kind(errors.New("connection reset")))
	assert.Equal(t, "", Kind(nil))

	assert.True(t, IsDomain(wrapped))
	assert.False(t, IsDomain(errors.New("boom")))
}
