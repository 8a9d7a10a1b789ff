// Package dataset reads and writes the tab-separated listing snapshot.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"sjsage522/listingtracker/internal/listing"
	"sjsage522/listingtracker/logger"
	apperrors "sjsage522/listingtracker/pkg/errors"
)

// Columns are the named columns, in file order, after the unnamed index
var Columns = []string{
	"id", "portal_id", "address", "price", "beds", "baths", "property_type",
	"estate_agent", "ber_rating", "floor_area", "floor_area_unit",
	"longitude", "latitude", "publish_date", "description", "features", "view_count",
	"small_area", "county_area", "constituency", "province", "local_electoral", "county",
	"currently_listed", "sold", "date_scraped",
}

// legacyNames maps a column to the names older snapshots used for it, in
// lookup order. A canonical column in the header always wins.
var legacyNames = map[string][]string{
	"id":              {"href", "daft_link", "url"},
	"portal_id":       {"daft_id"},
	"estate_agent":    {"agent"},
	"ber_rating":      {"ber"},
	"floor_area":      {"floor-area"},
	"floor_area_unit": {"floor-area-metric"},
	"longitude":       {"lng"},
	"latitude":        {"lat"},
	"publish_date":    {"date_posted"},
	"description":     {"desc"},
	"view_count":      {"views"},
	"county_area":     {"county_name"},
}

// DatedPath is the snapshot file for t in dir: dir/YYYY_MM_DD.tsv
func DatedPath(dir string, t time.Time) string {
	return filepath.Join(dir, t.Format("2006_01_02")+".tsv")
}

// Latest returns the most recently modified .tsv in dir, or "" when there is none
func Latest(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", apperrors.NewStorage(dir, "failed to list snapshots", err)
	}

	type candidate struct {
		path string
		mod  time.Time
	}
	var files []candidate
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".tsv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, candidate{path: filepath.Join(dir, e.Name()), mod: info.ModTime()})
	}
	if len(files) == 0 {
		return "", nil
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].mod.Equal(files[j].mod) {
			return files[i].path > files[j].path
		}
		return files[i].mod.After(files[j].mod)
	})
	return files[0].path, nil
}

// Load reads a snapshot. A missing file is a first run: empty dataset, no error.
func Load(path string, log *logger.Logger) (*listing.Dataset, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return listing.NewDataset(), nil
	}
	if err != nil {
		return nil, apperrors.NewStorage(path, "failed to open dataset", err)
	}
	defer f.Close()

	d, err := Decode(f, log)
	if err != nil {
		return nil, apperrors.NewStorage(path, "failed to read dataset", err)
	}
	return d, nil
}

// Save writes d to path through a temp file and rename, so a crash never
// leaves a half-written snapshot.
func Save(path string, d *listing.Dataset) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.NewStorage(path, "failed to create output directory", err)
	}

	tmp, err := os.CreateTemp(dir, ".listings-*.tsv")
	if err != nil {
		return apperrors.NewStorage(path, "failed to create temp file", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, d); err != nil {
		tmp.Close()
		return apperrors.NewStorage(path, "failed to write dataset", err)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.NewStorage(path, "failed to close temp file", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return apperrors.NewStorage(path, "failed to replace dataset", err)
	}
	return nil
}

// Encode writes the header and one row per record, indexed from 0
func Encode(w io.Writer, d *listing.Dataset) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	if err := cw.Write(append([]string{""}, Columns...)); err != nil {
		return err
	}
	for i, r := range d.Records() {
		if err := cw.Write(append([]string{strconv.Itoa(i)}, encodeRecord(r)...)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Decode reads rows by header name; unknown columns are ignored and missing
// ones read as null. Rows without an id are skipped, repeated ids keep the
// first row.
func Decode(r io.Reader, log *logger.Logger) (*listing.Dataset, error) {
	if log == nil {
		log = logger.Nop()
	}
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return listing.NewDataset(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := headerColumns(header)
	_, hasID := cols["id"]

	d := listing.NewDataset()
	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		// an unreadable snapshot must not pass as an empty one, or the next
		// save would replace every stored listing
		if !hasID {
			return nil, fmt.Errorf("header has no id column (tried id, %s)", strings.Join(legacyNames["id"], ", "))
		}

		rec := decodeRecord(row, cols)
		if rec.ID == "" {
			log.Warn().Int("line", line).Msg("row without id skipped")
			continue
		}
		if d.Has(rec.ID) {
			log.Warn().Int("line", line).Str("id", rec.ID).Msg("duplicate id, keeping first row")
			continue
		}
		if err := d.Append(rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	return d, nil
}

func headerColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	for canonical, names := range legacyNames {
		if _, ok := cols[canonical]; ok {
			continue
		}
		for _, name := range names {
			if i, ok := cols[name]; ok {
				cols[canonical] = i
				break
			}
		}
	}
	return cols
}
