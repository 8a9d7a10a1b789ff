package crawler

import (
	"context"
	"errors"
	"fmt"

	"sjsage522/listingtracker/internal/listing"
)

// MockSource serves canned pages keyed by offset and records every request
type MockSource struct {
	pageSize int
	pages    map[int]Page
	fail     map[int]error
	requests []PageRequest
}

func NewMockSource(pageSize int) *MockSource {
	return &MockSource{
		pageSize: pageSize,
		pages:    make(map[int]Page),
		fail:     make(map[int]error),
	}
}

func (m *MockSource) Fetch(ctx context.Context, req PageRequest) (Page, error) {
	m.requests = append(m.requests, req)
	if err, ok := m.fail[req.From]; ok {
		return Page{}, err
	}
	if p, ok := m.pages[req.From]; ok {
		return p, nil
	}
	return Page{}, &mockError{message: fmt.Sprintf("no page at offset %d", req.From)}
}

func (m *MockSource) PageSize() int   { return m.pageSize }
func (m *MockSource) GetName() string { return "mock" }

type mockError struct {
	message string
}

func (e *mockError) Error() string {
	return e.message
}

var errMockDown = errors.New("mock: down")

func rec(id, address string, price int64) listing.Record {
	return listing.Record{
		ID:              id,
		Address:         address,
		Price:           &listing.Price{Amount: price},
		CurrentlyListed: true,
	}
}
