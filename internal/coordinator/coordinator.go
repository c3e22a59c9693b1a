// Package coordinator owns the lifecycle of one opened file: it wires the
// row indexer, row reader(s), row/byte cache, schema scanner, lazy
// transformer, and filter row indexer together the way an external
// TUI/CLI collaborator expects, and routes action-stack changes to a
// rebuilt transformer. It performs no scanning, reading, or schema
// inference itself.
package coordinator

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/scrapbird/datamorph/internal/compressreader"
	"github.com/scrapbird/datamorph/internal/dmerrors"
	"github.com/scrapbird/datamorph/internal/filterindex"
	"github.com/scrapbird/datamorph/internal/morph"
	"github.com/scrapbird/datamorph/internal/rowcache"
	"github.com/scrapbird/datamorph/internal/rowindex"
	"github.com/scrapbird/datamorph/internal/rowreader"
	"github.com/scrapbird/datamorph/internal/rowsource"
	"github.com/scrapbird/datamorph/internal/scanner"
	"github.com/scrapbird/datamorph/internal/schema"
)

// ProgressFunc reports progress for any of the coordinator's background
// stages. stage identifies which one ("indexing", "schema", "filter");
// current/total are row counts, total is -1 while unknown.
type ProgressFunc func(stage string, current, total int64, message string)

// Table is the read-only table contract a host UI consumes: Rows,
// Columns, ColumnNames, and a Cell accessor. Both the unprojected
// rowsource.Source and the projected morph.Transformer satisfy a
// compatible shape; Table is the coordinator's uniform view over whichever
// one is currently active.
type Table interface {
	Rows() int64
	Columns() int
	ColumnNames() []string
	Cell(row int64, col int) (string, error)
}

// unprojectedTable adapts rowsource.Source (whose Cell never errors) to
// the Table interface exposed once no action stack is in effect.
type unprojectedTable struct{ src *rowsource.Source }

func (u unprojectedTable) Rows() int64          { return u.src.Rows() }
func (u unprojectedTable) Columns() int         { return u.src.Columns() }
func (u unprojectedTable) ColumnNames() []string { return u.src.ColumnNames() }
func (u unprojectedTable) Cell(row int64, col int) (string, error) {
	if row < 0 || row >= u.src.Rows() {
		return "", dmerrors.ErrOutOfRange
	}
	if col < 0 || col >= u.src.Columns() {
		return "", dmerrors.ErrOutOfRange
	}
	return u.src.Cell(row, col), nil
}

// State holds everything needed to keep serving a single opened file:
// the indexer, readers, cache, schema, and current action stack. Its ID
// is a fresh UUID, a stable handle a host can use to refer to this
// session regardless of the file path.
type State struct {
	ID           string
	FilePath     string
	resolvedPath string // decompressed temp path, or FilePath unchanged
	Format       scanner.Format

	progress ProgressFunc

	indexer *rowindex.Indexer
	reader  *rowreader.Reader // display-path reader, owned by the cache
	source  *rowsource.Source
	cache   *rowcache.Cache

	cleanupCompression func() error

	bgCtx    context.Context
	cancelBg context.CancelFunc
	bgWG     sync.WaitGroup

	mu         sync.Mutex
	actions    []morph.Action
	table      Table
	filterIdx  *filterindex.Indexer
	displayFmt string
}

// Open constructs a State for filePath: it transparently decompresses a
// compressed source, detects or applies the forced format, spawns
// BuildIndex on a background goroutine, runs the initial schema scan
// synchronously, spawns the background schema refinement, and builds the
// cache-backed, unprojected table view. The action stack starts empty;
// call SetActions to install one.
func Open(filePath string, opts OpenOptions, progress ProgressFunc) (*State, error) {
	if filePath == "" {
		return nil, fmt.Errorf("%w: file path must be non-empty", dmerrors.ErrArgumentInvalid)
	}

	resolvedPath, cleanup, err := compressreader.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("coordinator: opening %s: %w", filePath, err)
	}

	format := resolveFormat(resolvedPath, opts.Format)

	idxProgress := func(stage string, current, total int64, message string) {
		if progress != nil {
			progress(stage, current, total, message)
		}
	}
	indexer := rowindex.New(resolvedPath, format, idxProgress)

	displayReader, err := rowreader.New(resolvedPath, format)
	if err != nil {
		cleanup()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	st := &State{
		ID:                 uuid.New().String(),
		FilePath:           filePath,
		resolvedPath:       resolvedPath,
		Format:             format,
		progress:           progress,
		indexer:            indexer,
		reader:             displayReader,
		cleanupCompression: cleanup,
		displayFmt:         opts.TimestampDisplayFormat,
		bgCtx:              ctx,
		cancelBg:           cancel,
	}

	var buildWG sync.WaitGroup
	buildWG.Add(1)
	go func() {
		defer buildWG.Done()
		if buildErr := indexer.BuildIndex(); buildErr != nil && st.progress != nil {
			st.progress("indexing", -1, -1, buildErr.Error())
		}
	}()

	initial, err := schema.InitialScan(displayReader, format, opts.InitialScanRows)
	if err != nil {
		buildWG.Wait()
		displayReader.Close()
		cleanup()
		return nil, err
	}
	initial = applyDisplayFormat(initial, st.displayFmt)

	cacheSize := opts.CacheSize
	cache := rowcache.New(indexer, displayReader, cacheSize)
	st.cache = cache
	st.source = rowsource.New(cache, schema.FormatFromScanner(format), initial)
	st.table = unprojectedTable{src: st.source}

	refineReader, err := rowreader.New(resolvedPath, format)
	if err == nil {
		alreadyRead := int64(opts.InitialScanRows)
		if alreadyRead <= 0 {
			alreadyRead = schema.DefaultInitialScanRows
		}
		st.bgWG.Add(1)
		go func() {
			defer st.bgWG.Done()
			defer refineReader.Close()
			publish := func(next *schema.TableSchema) {
				st.source.UpdateSchema(applyDisplayFormat(next, st.displayFmt))
			}
			_, rerr := schema.BackgroundRefine(st.bgCtx, refineReader, indexer, initial, alreadyRead, publish)
			if rerr != nil && st.progress != nil {
				st.progress("schema", -1, -1, rerr.Error())
			}
		}()
	}

	buildWG.Wait()
	return st, nil
}

func resolveFormat(resolvedPath string, override FormatOverride) scanner.Format {
	switch override {
	case FormatForceCSV:
		return scanner.FormatCSV
	case FormatForceJSONLines:
		return scanner.FormatJSONLines
	default:
		if detectExtensionFormat(resolvedPath) == "jsonlines" {
			return scanner.FormatJSONLines
		}
		return scanner.FormatCSV
	}
}

func applyDisplayFormat(ts *schema.TableSchema, format string) *schema.TableSchema {
	if format == "" || ts == nil {
		return ts
	}
	changed := false
	cols := make([]schema.ColumnSchema, len(ts.Columns))
	for i, c := range ts.Columns {
		cols[i] = c
		if c.Type == schema.Timestamp && c.DisplayFormat != format {
			cols[i].DisplayFormat = format
			changed = true
		}
	}
	if !changed {
		return ts
	}
	next, err := schema.NewTableSchema(ts.SourceFormat, cols)
	if err != nil {
		return ts
	}
	return next
}

// Table returns the currently active table view: the projected transformer
// when an action stack is installed, otherwise the raw cache-backed
// source.
func (st *State) Table() Table {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.table
}

// SetActions installs a new action stack, rebuilding the transformer and,
// if any filter is active, the filter row indexer against the same
// underlying source and schema. This is equivalent to rewinding and
// re-projecting: the action stack itself is append-only from the caller's
// perspective, but the transformer is always freshly constructed.
func (st *State) SetActions(actions []morph.Action) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if len(actions) == 0 {
		st.actions = nil
		st.table = unprojectedTable{src: st.source}
		st.filterIdx = nil
		return nil
	}

	ts := st.source.Schema()
	t, err := morph.New(st.source, ts, actions, nil)
	if err != nil {
		return err
	}

	specs := t.FilterSpecs()
	if len(specs) > 0 {
		// The filter indexer always uses its own Reader, independent of
		// the display cache's, so the two I/O paths stay O(file size)
		// each rather than contending over one positioned handle.
		filterReader, ferr := rowreader.New(st.resolvedPath, st.Format)
		if ferr != nil {
			return ferr
		}
		fi := filterindex.New(filterReader, st.indexer, schema.FormatFromScanner(st.Format), columnNames(ts), specs)
		t, err = morph.New(st.source, ts, actions, fi)
		if err != nil {
			filterReader.Close()
			return err
		}
		st.filterIdx = fi
		st.bgWG.Add(1)
		go func() {
			defer st.bgWG.Done()
			defer filterReader.Close()
			if ferr := fi.BuildIndexAsync(st.bgCtx); ferr != nil && st.progress != nil {
				st.progress("filter", -1, -1, ferr.Error())
			}
		}()
	} else {
		st.filterIdx = nil
	}

	st.actions = actions
	st.table = t
	return nil
}

func columnNames(ts *schema.TableSchema) []string {
	names := make([]string, len(ts.Columns))
	for i, c := range ts.Columns {
		names[i] = c.Name
	}
	return names
}

// Close cancels all background work and releases every reader this State
// owns, including the decompressed temp file (if any).
func (st *State) Close() error {
	if st.cancelBg != nil {
		st.cancelBg()
	}
	st.bgWG.Wait()

	var err error
	if cerr := st.reader.Close(); cerr != nil {
		err = cerr
	}
	if st.cleanupCompression != nil {
		if cerr := st.cleanupCompression(); err == nil {
			err = cerr
		}
	}
	return err
}
