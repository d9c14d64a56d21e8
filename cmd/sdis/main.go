// Starling disassembler - inspects, verifies and stores compiled chunks
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/tliron/commonlog"

	"github.com/chazu/starling/manifest"
	"github.com/chazu/starling/pkg/bytecode"
	"github.com/chazu/starling/pkg/chunkstore"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("sdis")

func main() {
	verbose := flag.Int("v", 0, "Log verbosity (0-2)")
	check := flag.Bool("check", false, "Verify stack balance instead of printing a listing")
	depth := flag.Bool("depth", false, "Print the maximum stack depth of each chunk")
	hash := flag.Bool("hash", false, "Print the content hash of each chunk")
	put := flag.Bool("put", false, "Store chunks in the project chunk store")
	list := flag.Bool("list", false, "List chunks in the project chunk store")
	storePath := flag.String("store", "", "Chunk store path (overrides starling.toml)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: sdis [options] [chunk files...]\n\n")
		fmt.Fprintf(os.Stderr, "Disassembles compiled Starling chunks. With no files, operates on\n")
		fmt.Fprintf(os.Stderr, "*.chunk under the source dirs of the nearest starling.toml.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  sdis main.chunk           # Print a listing\n")
		fmt.Fprintf(os.Stderr, "  sdis -check build/*.chunk # Verify stack balance\n")
		fmt.Fprintf(os.Stderr, "  sdis -put main.chunk      # Store in .starling/chunks.db\n")
		fmt.Fprintf(os.Stderr, "  sdis -list                # Show stored chunks\n")
	}
	flag.Parse()

	commonlog.Configure(*verbose, nil)

	m := loadManifest()

	if *list {
		if err := runList(*storePath, m); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	files := flag.Args()
	if len(files) == 0 {
		files = manifestChunkFiles(m)
	}
	if len(files) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	strict := m != nil && m.Check.Strict
	failed := false
	for _, path := range files {
		if err := processFile(path, *check, *depth, *hash, *put, strict, *storePath, m); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func processFile(path string, check, depth, hash, put, strict bool, storePath string, m *manifest.Manifest) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	c, err := bytecode.UnmarshalChunk(data)
	if err != nil {
		return err
	}
	log.Infof("loaded chunk %q (%d bytes of code)", c.Name, len(c.Code))

	switch {
	case check:
		if strict {
			if err := c.CheckKnownOpcodes(); err != nil {
				return err
			}
		}
		if err := c.CheckStackBalance(); err != nil {
			return err
		}
		fmt.Printf("%s: ok\n", path)
	case depth:
		d, err := c.MaxStackDepth()
		if err != nil {
			return err
		}
		fmt.Printf("%s: max stack depth %d\n", path, d)
	case hash:
		h, err := bytecode.ChunkHash(c)
		if err != nil {
			return err
		}
		fmt.Printf("%x  %s\n", h, path)
	case put:
		store, err := openStore(storePath, m)
		if err != nil {
			return err
		}
		defer store.Close()
		h, err := store.Put(c)
		if err != nil {
			return err
		}
		fmt.Printf("stored %s as %x\n", path, h)
	default:
		fmt.Print(c.Disassemble())
	}
	return nil
}

func runList(storePath string, m *manifest.Manifest) error {
	store, err := openStore(storePath, m)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List()
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Printf("%x  %s\n", e.Hash, e.Name)
	}
	return nil
}

// loadManifest finds the nearest starling.toml; a missing manifest is not
// an error, only a bad one is.
func loadManifest() *manifest.Manifest {
	cwd, err := os.Getwd()
	if err != nil {
		return nil
	}
	m, err := manifest.FindAndLoad(cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if m != nil {
		log.Infof("using project at %s", m.Dir)
	}
	return m
}

// manifestChunkFiles globs *.chunk under the manifest's source dirs.
func manifestChunkFiles(m *manifest.Manifest) []string {
	if m == nil {
		return nil
	}
	var files []string
	for _, dir := range m.SourceDirPaths() {
		matches, err := filepath.Glob(filepath.Join(dir, "*.chunk"))
		if err != nil {
			continue
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files
}

// openStore resolves the chunk store path from the flag, the manifest, or
// the default location, in that order.
func openStore(override string, m *manifest.Manifest) (*chunkstore.Store, error) {
	if override != "" {
		return chunkstore.Open(override)
	}
	if m != nil {
		return chunkstore.Open(m.StorePath())
	}
	return chunkstore.Open(".starling-chunks.db")
}
