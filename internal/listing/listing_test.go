package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	p, ok := ParsePrice("450000")
	assert.True(t, ok)
	assert.Equal(t, Price{Amount: 450000}, p)

	p, ok = ParsePrice("poa")
	assert.True(t, ok)
	assert.True(t, p.POA)
	assert.Equal(t, "POA", p.String())

	p, ok = ParsePrice("325000.0")
	assert.True(t, ok)
	assert.Equal(t, int64(325000), p.Amount)

	_, ok = ParsePrice("")
	assert.False(t, ok)
}

func TestParseBER(t *testing.T) {
	b, ok := ParseBER(" b2 ")
	assert.True(t, ok)
	assert.Equal(t, BER("B2"), b)

	_, ok = ParseBER("H9")
	assert.False(t, ok)

	b, ok = ParseBER("SI_666")
	assert.True(t, ok)
	assert.Equal(t, BER("SI_666"), b)
}

func TestDatasetRejectsDuplicateIDs(t *testing.T) {
	d := NewDataset()
	require.NoError(t, d.Append(Record{ID: "a"}))
	assert.Error(t, d.Append(Record{ID: "a"}))
	assert.Error(t, d.Append(Record{ID: ""}))
	assert.Equal(t, 1, d.Len())
	assert.True(t, d.Has("a"))
	assert.False(t, d.Has("b"))
}

func TestDatasetRecordsAreCopies(t *testing.T) {
	beds := 3
	d, err := FromRecords([]Record{{ID: "a", Beds: &beds}})
	require.NoError(t, err)

	rs := d.Records()
	*rs[0].Beds = 9
	rs[0].Sold = true

	got, ok := d.Get("a")
	require.True(t, ok)
	assert.Equal(t, 3, *got.Beds)
	assert.False(t, got.Sold)
}

func TestNilDatasetIsEmpty(t *testing.T) {
	var d *Dataset
	assert.Equal(t, 0, d.Len())
	assert.False(t, d.Has("x"))
	assert.Nil(t, d.Records())
}

func TestDedupKey(t *testing.T) {
	a := Record{Address: "1 Main St, Dublin", Price: &Price{Amount: 100}}
	b := Record{Address: " 1 main st, dublin", Price: &Price{Amount: 100}}
	c := Record{Address: "1 Main St, Dublin", Price: &Price{POA: true}}
	assert.Equal(t, a.DedupKey(), b.DedupKey())
	assert.NotEqual(t, a.DedupKey(), c.DedupKey())
}
