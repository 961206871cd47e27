package fileloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
)

// DirectoryInfo contains metadata about a discovered directory
type DirectoryInfo struct {
	RootPath   string   // Absolute path to directory
	Files      []string // List of discovered file paths (absolute)
	TotalFiles int      // Files matching the pattern, including those over MaxFiles
	TotalSize  int64    // Total size in bytes of Files
}

// Truncated reports whether MaxFiles cut the file list short
func (d *DirectoryInfo) Truncated() bool {
	return d.TotalFiles > len(d.Files)
}

// DirectoryDiscoveryOptions controls file discovery behavior
type DirectoryDiscoveryOptions struct {
	Pattern         string   // Glob pattern filter (e.g., "**/*.json.gz", "*.csv")
	ExcludePatterns []string // Patterns to exclude
	MaxFiles        int      // Maximum files to include (0 = unlimited)
}

// IsDirectory checks if the path is a directory
func IsDirectory(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// DiscoverFiles finds all regular files under dirPath matching the pattern,
// in lexical order.
func DiscoverFiles(dirPath string, options DirectoryDiscoveryOptions) (*DirectoryInfo, error) {
	if options.Pattern == "" {
		return nil, fmt.Errorf("file pattern is required (e.g., **/*.csv)")
	}

	absPath, err := filepath.Abs(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	fullPattern := filepath.Join(absPath, options.Pattern)
	matches, err := doublestar.FilepathGlob(fullPattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("pattern matching failed: %w", err)
	}
	sort.Strings(matches)

	info := &DirectoryInfo{RootPath: absPath}
	for _, match := range matches {
		excluded := false
		for _, excludePattern := range options.ExcludePatterns {
			if matched, _ := doublestar.Match(excludePattern, filepath.Base(match)); matched {
				excluded = true
				break
			}
		}
		if excluded {
			continue
		}

		info.TotalFiles++
		if options.MaxFiles > 0 && len(info.Files) >= options.MaxFiles {
			continue
		}

		stat, err := os.Stat(match)
		if err != nil {
			continue // Skip files we can't stat
		}
		info.Files = append(info.Files, match)
		info.TotalSize += stat.Size()
	}

	return info, nil
}

// fileResult is one file of a directory after parsing
type fileResult struct {
	path    string
	relPath string
	hash    string
	table   rawTable
	warning string
	err     error
}

// loadDirectory reads every matching file concurrently and merges them into
// one dataset. Unreadable files are skipped with a warning; the header is
// the union of all headers in order of first appearance.
func loadDirectory(ctx context.Context, dirPath string, options Options) (*Dataset, error) {
	pattern := options.Pattern
	if pattern == "" {
		pattern = "**/*"
	}
	info, err := DiscoverFiles(dirPath, DirectoryDiscoveryOptions{
		Pattern:  pattern,
		MaxFiles: options.MaxFiles,
	})
	if err != nil {
		return nil, err
	}
	if len(info.Files) == 0 {
		return nil, fmt.Errorf("no files matching %q found in %s", pattern, dirPath)
	}

	results := make([]fileResult, len(info.Files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, path := range info.Files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rel, err := filepath.Rel(info.RootPath, path)
			if err != nil {
				rel = path
			}
			res := fileResult{path: path, relPath: filepath.ToSlash(rel)}
			res.table, res.hash, res.warning, res.err = readFile(gctx, path, options)
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var warnings []string
	if info.Truncated() {
		warnings = append(warnings, fmt.Sprintf("only the first %d of %d files were loaded", len(info.Files), info.TotalFiles))
	}

	seen := make(map[string]int)
	var header []string
	var hashInput []byte
	loaded := 0
	for _, res := range results {
		if res.err != nil {
			warnings = append(warnings, fmt.Sprintf("skipped %s: %v", res.relPath, res.err))
			continue
		}
		if res.warning != "" {
			warnings = append(warnings, fmt.Sprintf("%s: %s", res.relPath, res.warning))
		}
		for _, col := range res.table.header {
			if _, ok := seen[col]; !ok {
				seen[col] = len(header)
				header = append(header, col)
			}
		}
		// Directory structure is part of the hash
		hashInput = append(hashInput, res.hash...)
		hashInput = append(hashInput, res.relPath...)
		loaded++
	}
	if loaded == 0 {
		return nil, fmt.Errorf("none of the %d files in %s could be read", len(info.Files), dirPath)
	}

	sourceIdx := -1
	if options.IncludeSourceColumn {
		// A file that already has the column gets it overwritten
		if idx, ok := seen[SourceColumn]; ok {
			sourceIdx = idx
		} else {
			sourceIdx = len(header)
			header = append(header, SourceColumn)
		}
	}

	var rows [][]string
	for _, res := range results {
		if res.err != nil {
			continue
		}
		for _, row := range res.table.rows {
			unified := make([]string, len(header))
			for j, val := range row {
				if j < len(res.table.header) {
					unified[seen[res.table.header[j]]] = val
				}
			}
			if sourceIdx >= 0 {
				unified[sourceIdx] = res.relPath
			}
			rows = append(rows, unified)
		}
	}

	hash, err := hashParts(hashInput)
	if err != nil {
		return nil, err
	}
	return buildDataset(info.RootPath, hash, rawTable{header: header, rows: rows}, options, warnings)
}
