package corpus

import (
	"context"
	"io/fs"
	"log"
	"path/filepath"

	"astenc/internal/ast"
	"astenc/internal/encoder"
	"astenc/internal/grammar"
	"astenc/internal/vocab"
)

// Pipeline walks a directory, parses every supported source file, and
// encodes the resulting trees in fixed-size batches. A failed batch is
// logged and dropped whole; the pipeline continues with the next one.
type Pipeline struct {
	Encoder   *encoder.BatchEncoder
	Emitter   RowEmitter
	BatchSize int
	Workers   int
}

// Run processes dirPath and returns once every discovered file has been
// parsed and every full or trailing batch encoded.
func (p *Pipeline) Run(ctx context.Context, dirPath string) error {
	batchSize := p.BatchSize
	if batchSize < 1 {
		batchSize = 1
	}

	pool := NewWorkerPool(p.Workers)
	pool.Start()

	collectErr := make(chan error, 1)
	go func() {
		collectErr <- p.collect(pool.Results(), batchSize)
	}()

	walkErr := filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !d.IsDir() {
			pool.Submit(path)
		}
		return nil
	})

	pool.Stop()
	if err := <-collectErr; err != nil {
		return err
	}
	return walkErr
}

// collect keeps draining results after a failure so the workers never block
// on a full channel; the first error wins.
func (p *Pipeline) collect(results <-chan ParsedTree, batchSize int) error {
	var firstErr error
	batch := make([]ParsedTree, 0, batchSize)
	for pt := range results {
		if firstErr != nil {
			continue
		}
		batch = append(batch, pt)
		if len(batch) == batchSize {
			firstErr = p.encodeBatch(batch)
			batch = batch[:0]
		}
	}
	if firstErr == nil && len(batch) > 0 {
		firstErr = p.encodeBatch(batch)
	}
	return firstErr
}

// encodeBatch runs one batch call and emits one row per tree. Encode
// failures abort only this batch; emit failures abort the pipeline.
func (p *Pipeline) encodeBatch(batch []ParsedTree) error {
	trees := make([]encoder.Tree, len(batch))
	for i, pt := range batch {
		trees[i] = pt.Tree
	}

	out, err := p.Encoder.Encode(trees)
	if err != nil {
		log.Printf("Error encoding batch of %d trees (first: %s): %v", len(batch), batch[0].Path, err)
		return nil
	}

	for i, pt := range batch {
		nodes := 0
		for _, m := range out.Mask[i] {
			if m == 1 {
				nodes++
			}
		}
		row := Row{
			Path:    pt.Path,
			Nodes:   nodes,
			Width:   p.Encoder.Features.Width(),
			Vectors: out.Encodings[i][:nodes],
		}
		if err := p.Emitter.EmitRow(row); err != nil {
			return err
		}
	}
	return nil
}

// ParseDir parses every supported file under dirPath serially, in walk
// order. Files that fail to parse are logged and skipped.
func ParseDir(dirPath string) ([]ParsedTree, error) {
	var parsed []ParsedTree
	err := filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		tree, err := parseFile(path)
		if err != nil {
			log.Printf("Error parsing file %s: %v", path, err)
			return nil
		}
		if tree != nil {
			parsed = append(parsed, ParsedTree{Path: path, Tree: tree})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return parsed, nil
}

// CollectTables parses every supported file under dirPath serially and
// accumulates the vocabulary and grammar tables covering the corpus.
func CollectTables(dirPath string) (*vocab.Vocab, *grammar.Grammar, error) {
	parsed, err := ParseDir(dirPath)
	if err != nil {
		return nil, nil, err
	}

	v := vocab.New()
	g := grammar.New()
	for _, pt := range parsed {
		v.Collect([]*ast.Tree{pt.Tree})
		g.Collect([]*ast.Tree{pt.Tree})
	}
	return v, g, nil
}
