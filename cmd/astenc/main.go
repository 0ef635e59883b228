package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"astenc/internal/config"
	"astenc/internal/corpus"
	"astenc/internal/encoder"
	"astenc/internal/export"
	"astenc/internal/gnn"
	"astenc/internal/grammar"
	"astenc/internal/vocab"
)

// identityPropagator passes initial vectors through untouched, for dry runs
// without the message-passing engine.
type identityPropagator struct{}

func (identityPropagator) Propagate(vectors [][]float32, relations []encoder.Relation) ([][]float32, error) {
	out := make([][]float32, len(vectors))
	for i, v := range vectors {
		out[i] = append([]float32(nil), v...)
	}
	return out, nil
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: astenc <command> [options]")
		fmt.Println("Commands: build-vocab, encode, export-graph")
		os.Exit(1)
	}

	if err := config.LoadEnv(); err != nil {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	// Handlers return their errors so deferred cleanup runs before the
	// process exits.
	var err error
	switch os.Args[1] {
	case "build-vocab":
		err = handleBuildVocab(os.Args[2:])
	case "encode":
		err = handleEncode(os.Args[2:])
	case "export-graph":
		err = handleExportGraph(os.Args[2:])
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("astenc %s: %v", os.Args[1], err)
	}
}

func handleBuildVocab(args []string) error {
	fs := flag.NewFlagSet("build-vocab", flag.ExitOnError)
	dir := fs.String("dir", ".", "Source directory to scan")
	fs.Parse(args)

	cfg := config.LoadConfig()

	v, g, err := corpus.CollectTables(*dir)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", *dir, err)
	}
	if err := v.Save(cfg.VocabPath); err != nil {
		return fmt.Errorf("failed to save vocab: %w", err)
	}
	if err := g.Save(cfg.GrammarPath); err != nil {
		return fmt.Errorf("failed to save grammar: %w", err)
	}
	log.Printf("Wrote %d identifiers to %s and %d syntax kinds to %s",
		v.Size(), cfg.VocabPath, g.Size(), cfg.GrammarPath)
	return nil
}

func handleEncode(args []string) error {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	dir := fs.String("dir", ".", "Source directory to encode")
	out := fs.String("out", "", "Output JSONL file (default stdout)")
	mock := fs.Bool("mock", false, "Skip propagation, emit initial vectors")
	fs.Parse(args)

	cfg := config.LoadConfig()

	v, err := vocab.Load(cfg.VocabPath)
	if err != nil {
		return fmt.Errorf("failed to load vocab (run build-vocab first): %w", err)
	}
	g, err := grammar.Load(cfg.GrammarPath)
	if err != nil {
		return fmt.Errorf("failed to load grammar (run build-vocab first): %w", err)
	}

	var engine encoder.Propagator = gnn.New(cfg.Timesteps...)
	if *mock {
		log.Println("Using identity propagator")
		engine = identityPropagator{}
	}

	w, closeOut, err := openOutput(*out)
	if err != nil {
		return err
	}
	defer closeOut()

	pipeline := &corpus.Pipeline{
		Encoder: &encoder.BatchEncoder{
			Vocab:    v,
			Grammar:  g,
			Features: encoder.NewEmbeddingTable(v.Size()+g.Size(), cfg.EncodingSize, cfg.FeatureSeed),
			Engine:   engine,
		},
		Emitter:   corpus.NewJSONLRowEmitter(w),
		BatchSize: cfg.BatchSize,
		Workers:   4,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := pipeline.Run(ctx, *dir); err != nil {
		return fmt.Errorf("encoding failed: %w", err)
	}
	return nil
}

func handleExportGraph(args []string) error {
	fs := flag.NewFlagSet("export-graph", flag.ExitOnError)
	dir := fs.String("dir", ".", "Source directory to flatten into one batch")
	out := fs.String("out", "", "Output JSONL file (default stdout)")
	useNeo4j := fs.Bool("neo4j", false, "Load into Neo4j instead of JSONL")
	wipe := fs.Bool("wipe", false, "Wipe the Neo4j database first")
	fs.Parse(args)

	parsed, err := corpus.ParseDir(*dir)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", *dir, err)
	}
	trees := make([]encoder.Tree, len(parsed))
	for i, pt := range parsed {
		trees[i] = pt.Tree
	}

	index := encoder.BuildIndex(trees)
	relations, err := encoder.BuildRelations(trees, index)
	if err != nil {
		return fmt.Errorf("failed to build relations: %w", err)
	}
	nodes, edges, err := export.CombinedGraph(trees, index, relations)
	if err != nil {
		return fmt.Errorf("failed to convert combined graph: %w", err)
	}
	log.Printf("Combined graph: %d nodes, %d edges across %d relations", len(nodes), len(edges), len(relations))

	if *useNeo4j {
		return exportToNeo4j(nodes, edges, *wipe)
	}

	w, closeOut, err := openOutput(*out)
	if err != nil {
		return err
	}
	defer closeOut()

	emitter := export.NewJSONLEmitter(w)
	for _, n := range nodes {
		if err := emitter.EmitNode(n); err != nil {
			return fmt.Errorf("failed to emit node: %w", err)
		}
	}
	for _, e := range edges {
		if err := emitter.EmitEdge(e); err != nil {
			return fmt.Errorf("failed to emit edge: %w", err)
		}
	}
	return nil
}

func exportToNeo4j(nodes []export.Node, edges []export.Edge, wipe bool) error {
	cfg := config.LoadConfig()
	if cfg.Neo4jURI == "" {
		return fmt.Errorf("NEO4J_URI is not set")
	}

	ctx := context.Background()
	driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURI, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""))
	if err != nil {
		return fmt.Errorf("failed to create Neo4j driver: %w", err)
	}
	defer driver.Close(ctx)

	loader := export.NewNeo4jLoader(driver, cfg.Neo4jDatabase)
	if wipe {
		if err := loader.Wipe(ctx); err != nil {
			return fmt.Errorf("failed to wipe database: %w", err)
		}
	}
	if err := loader.ApplyConstraints(ctx); err != nil {
		return fmt.Errorf("failed to apply constraints: %w", err)
	}
	if err := loader.LoadNodes(ctx, nodes); err != nil {
		return fmt.Errorf("failed to load nodes: %w", err)
	}
	if err := loader.LoadEdges(ctx, edges); err != nil {
		return fmt.Errorf("failed to load edges: %w", err)
	}
	log.Printf("Loaded %d nodes and %d edges", len(nodes), len(edges))
	return nil
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}
