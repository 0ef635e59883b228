// Package corpus runs the batch encoder over a directory of source files:
// parse workers lower files into trees, a collector groups them into
// fixed-size batches, and every batch goes through one encode call.
package corpus

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"astenc/internal/ast"
)

// ParsedTree couples a lowered tree with the file it came from.
type ParsedTree struct {
	Path string
	Tree *ast.Tree
}

// WorkerPool parses source files concurrently. Files with no registered
// parser are skipped.
type WorkerPool struct {
	workers int
	jobChan chan string
	results chan ParsedTree
	wg      sync.WaitGroup
}

// NewWorkerPool creates a pool with the given parallelism.
func NewWorkerPool(workers int) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	return &WorkerPool{
		workers: workers,
		jobChan: make(chan string, 100),
		results: make(chan ParsedTree, 100),
	}
}

// Start launches the workers.
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

// Results returns the channel of parsed trees. It is closed by Stop once
// all workers have drained.
func (wp *WorkerPool) Results() <-chan ParsedTree {
	return wp.results
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for path := range wp.jobChan {
		tree, err := parseFile(path)
		if err != nil {
			log.Printf("Error parsing file %s: %v", path, err)
			continue
		}
		if tree != nil {
			wp.results <- ParsedTree{Path: path, Tree: tree}
		}
	}
}

func parseFile(path string) (*ast.Tree, error) {
	parser, ok := ast.ParserFor(filepath.Ext(path))
	if !ok {
		return nil, nil // Not supported
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return parser.ParseSource(path, content)
}

// Submit queues a file for parsing.
func (wp *WorkerPool) Submit(path string) {
	wp.jobChan <- path
}

// Stop closes the job queue, waits for the workers, then closes Results.
func (wp *WorkerPool) Stop() {
	close(wp.jobChan)
	wp.wg.Wait()
	close(wp.results)
}
