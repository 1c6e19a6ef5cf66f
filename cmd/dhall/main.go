// Command dhall is the thin CLI wrapper that exercises parser, imports and
// core end to end: it reads Dhall source, resolves its imports, type
// checks and normalizes it, and either prints the result or compiles it to
// the binary `.dhallb` CBOR form, matching the teacher's main.go in style
// (log.Fatalf at each stage, stdin/stdout/stderr plumbing) but reshaped
// around flags instead of a single stdin-to-stdout pipeline.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"github.com/dhall-run/dhall-go/core"
	"github.com/dhall-run/dhall-go/imports"
	"github.com/dhall-run/dhall-go/parser"
)

func main() {
	compile := flag.Bool("compile", false, "write <file>.dhallb instead of printing the normal form")
	cache := flag.String("cache", "", "write each top-level normalized expression into this directory as 1220<hex>")
	verbose := flag.Bool("verbose", false, "log resolver fetch/cache activity to stderr")
	flag.Parse()

	level := hclog.Warn
	if *verbose {
		level = hclog.Debug
	}
	logger := hclog.New(&hclog.LoggerOptions{Name: "dhall", Level: level})

	var (
		src      []byte
		filename string
		err      error
	)
	if args := flag.Args(); len(args) > 0 {
		filename = args[0]
		src, err = os.ReadFile(filename)
	} else {
		filename = "-"
		src, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		log.Fatalf("read error: %v", err)
	}

	expr, err := parser.Parse(filename, src)
	if err != nil {
		log.Fatalf("parse error: %v", err)
	}

	diskCache, err := imports.NewDiskLRUCache(256, logger)
	if err != nil {
		log.Fatalf("cache init error: %v", err)
	}
	resolver := imports.NewResolver(imports.Config{
		Deadline: time.Now().Add(10 * time.Minute),
		Parse:    parser.Parse,
		Cache:    diskCache,
		Logger:   logger,
	})
	root := core.Local(absPath(filename))
	resolved, err := resolver.Resolve(expr, root)
	if err != nil {
		log.Fatalf("import resolve error: %v", err)
	}

	inferredType, err := core.TypeOf(core.EmptyContext(), resolved)
	if err != nil {
		log.Fatalf("type error: %v", err)
	}
	core.Render(os.Stderr, core.Quote(inferredType))
	fmt.Fprintln(os.Stderr)

	normal := core.AlphaNormalize(core.Quote(core.Eval(resolved)))

	switch {
	case *cache != "":
		if err := writeCacheEntry(*cache, normal); err != nil {
			log.Fatalf("cache write error: %v", err)
		}
	case *compile:
		if err := writeCompiled(filename, normal); err != nil {
			log.Fatalf("compile error: %v", err)
		}
	default:
		core.Render(os.Stdout, normal)
		fmt.Println()
	}
}

func absPath(filename string) string {
	if filename == "-" {
		return "/-"
	}
	if abs, err := filepath.Abs(filename); err == nil {
		return abs
	}
	return filename
}

// writeCompiled produces <file-without-ext>.dhallb next to the source,
// matching spec.md §6's CLI compile contract.
func writeCompiled(filename string, normal core.Term) error {
	data, err := core.EncodeCbor(normal)
	if err != nil {
		return err
	}
	out := trimDhallExt(filename) + ".dhallb"
	return os.WriteFile(out, data, 0o644)
}

// writeCacheEntry names the file 1220<hex-sha256> (the multihash encoding
// of the semantic hash) so the cache directory is directly content
// addressed, matching imports.DiskLRUCache's own on-disk naming.
func writeCacheEntry(dir string, normal core.Term) error {
	data, err := core.EncodeCbor(normal)
	if err != nil {
		return err
	}
	digest, err := core.SemanticMultihash(normal)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	name := "1220" + hex.EncodeToString(digest[2:])
	return os.WriteFile(dir+"/"+name, data, 0o644)
}

func trimDhallExt(filename string) string {
	const ext = ".dhall"
	if len(filename) > len(ext) && filename[len(filename)-len(ext):] == ext {
		return filename[:len(filename)-len(ext)]
	}
	return filename
}
