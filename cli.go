package main

import (
	"flag"
	"io"
	"strings"

	"sjsage522/listingtracker/config"
	"sjsage522/listingtracker/internal/crawler"
	"sjsage522/listingtracker/internal/reconcile"
)

// cliOptions are the command line settings of one invocation
type cliOptions struct {
	data     string
	dataDir  string
	out      string
	source   string
	dynamic  bool
	maxPages int
	policy   reconcile.Policy
	filter   crawler.SearchFilter
	agents   []string
}

// parseArgs reads flags and the optional search file. Flags win over file
// values. Any error here is a usage error and nothing has touched the network.
func parseArgs(args []string, stderr io.Writer) (cliOptions, error) {
	var opts cliOptions
	var (
		locations  string
		priceFrom  int
		priceTo    int
		minBeds    int
		searchFile string
		policy     string
	)

	fs := flag.NewFlagSet("listingtracker", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.data, "data", "", "previous dataset (TSV); a missing file starts a fresh dataset")
	fs.StringVar(&opts.dataDir, "data-dir", "", "snapshot directory: read the newest .tsv, write YYYY_MM_DD.tsv")
	fs.StringVar(&opts.out, "out", "", "where to write the merged dataset (default: -data)")
	fs.StringVar(&locations, "locations", "", "comma separated location slugs, e.g. dublin-city,cork")
	fs.IntVar(&priceFrom, "price-from", 0, "minimum price")
	fs.IntVar(&priceTo, "price-to", 0, "maximum price")
	fs.IntVar(&minBeds, "min-beds", 0, "minimum bedrooms")
	fs.StringVar(&searchFile, "search", "", "YAML search file with filters and known agents")
	fs.StringVar(&opts.source, "source", "", "index source: html or api (env SOURCE)")
	fs.BoolVar(&opts.dynamic, "dynamic", false, "render index pages in headless Chrome")
	fs.IntVar(&opts.maxPages, "max-pages", 0, "stop after this many index pages (0: all)")
	fs.StringVar(&policy, "policy", "", "what vanished listings become: sold or delisted (env VANISHED_POLICY)")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	search, err := config.LoadSearch(searchFile)
	if err != nil {
		return opts, err
	}
	opts.filter = search.SearchFilter
	opts.agents = search.Agents

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "locations":
			opts.filter.Locations = strings.Split(locations, ",")
		case "price-from":
			opts.filter.PriceFrom = priceFrom
		case "price-to":
			opts.filter.PriceTo = priceTo
		case "min-beds":
			opts.filter.MinBeds = minBeds
		}
	})

	opts.filter = opts.filter.Normalize()
	if err := opts.filter.Validate(); err != nil {
		return opts, err
	}

	if policy != "" {
		if opts.policy, err = reconcile.ParsePolicy(policy); err != nil {
			return opts, err
		}
	}
	return opts, nil
}
