package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"gridview/app/fileloader"
	"gridview/app/histogram"
	"gridview/app/query"
	"gridview/app/table"
)

const histogramBarWidth = 40

// histogramColumn resolves the --histogram value. "auto" takes the first
// date column.
func histogramColumn(ds *fileloader.Dataset, name string) (string, error) {
	if name != "auto" {
		info, ok := ds.Column(name)
		if !ok {
			return "", fmt.Errorf("no column named %q", name)
		}
		if info.FilterKind != query.FilterDate {
			return "", fmt.Errorf("column %q holds %s values, not dates", name, info.Type)
		}
		return name, nil
	}
	for _, c := range ds.Columns {
		if c.FilterKind == query.FilterDate {
			return c.Name, nil
		}
	}
	return "", fmt.Errorf("no date column to build a histogram over")
}

func writeHistogram(ctx context.Context, w io.Writer, tbl *table.Table[query.Record], ds *fileloader.Dataset, f *queryFlags, r renderer) error {
	field, err := histogramColumn(ds, f.histogram)
	if err != nil {
		return err
	}

	bounds := histogram.BoundsFromFilters(tbl.State().Filters, field)
	resp, err := histogram.Build(ctx, tbl.Result(), query.Field(field), bounds, 0, f.histogramBuckets)
	if err != nil {
		return err
	}

	peak := 0
	for _, b := range resp.Buckets {
		peak = max(peak, b.Count)
	}

	fmt.Fprintf(w, "%s, %d buckets of %s\n", field, len(resp.Buckets), time.Duration(resp.BucketSeconds)*time.Second)
	for _, b := range resp.Buckets {
		bar := 0
		if peak > 0 {
			bar = b.Count * histogramBarWidth / peak
		}
		start := r.cell(time.UnixMilli(b.Start))
		if _, err := fmt.Fprintf(w, "%s  %-*s %d\n", start, histogramBarWidth, strings.Repeat("█", bar), b.Count); err != nil {
			return err
		}
	}
	if resp.Skipped > 0 {
		fmt.Fprintf(w, "%d rows without a %s value\n", resp.Skipped, field)
	}
	return nil
}
