package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScrapeErrorMessage(t *testing.T) {
	err := NewNetwork("fetch", "https://example.com/a", "failed to fetch URL", io.ErrUnexpectedEOF)
	assert.Equal(t, "[network] fetch https://example.com/a: failed to fetch URL - unexpected EOF", err.Error())

	err = NewValidation("filter", "price_from exceeds price_to")
	assert.Equal(t, "[validation] filter: price_from exceeds price_to", err.Error())
}

func TestScrapeErrorUnwrap(t *testing.T) {
	err := NewStorage("/tmp/x.tsv", "write", io.ErrShortWrite)
	wrapped := fmt.Errorf("run failed: %w", err)

	assert.True(t, stderrors.Is(wrapped, io.ErrShortWrite))
	assert.True(t, Is(wrapped, ErrorTypeStorage))
	assert.Equal(t, ErrorTypeStorage, TypeOf(wrapped))
	assert.Equal(t, ErrorType(""), TypeOf(io.EOF))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, NewNetwork("fetch", "", "", nil).IsRetryable())
	assert.True(t, NewRender("fetch", "", "", nil).IsRetryable())
	assert.False(t, NewStatus("fetch", "", 404).IsRetryable())
	assert.False(t, NewParsing("extract", "", "", nil).IsRetryable())
	assert.False(t, NewConfiguration("bad", nil).IsRetryable())
}
