// Command shaderpartc compiles a JSON pipeline program description into
// per-stage GLSL 4.40 source.
//
// Usage:
//
//	shaderpartc [options] <program.json>
//
// Examples:
//
//	shaderpartc pipeline.json                 # Print VS/FS to stdout
//	shaderpartc -o out pipeline.json          # Write out/vertex.glsl, out/fragment.glsl
//	shaderpartc -vertex-texture-fetch pipeline.json
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/gogpu/shaderpart"
	"github.com/gogpu/shaderpart/internal/hirjson"
)

var (
	outDir              = flag.String("o", "", "output directory (default: stdout)")
	vertexTextureFetch  = flag.Bool("vertex-texture-fetch", false, "allow texture sampling in the vertex stage")
	forceHighPrecision  = flag.Bool("high-precision", false, "force highp float precision")
	versionFlag         = flag.Bool("version", false, "print version")
)

func version() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
	}
	return "dev"
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *versionFlag {
		fmt.Printf("shaderpartc version %s\n", version())
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		usage()
		os.Exit(1)
	}
	inputPath := args[0]

	source, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	mod, err := hirjson.Decode(source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding program: %v\n", err)
		os.Exit(1)
	}

	opts := shaderpart.DefaultOptions()
	opts.Config.EnableVertexTextureFetch = *vertexTextureFetch
	opts.GLSL.ForceHighPrecision = *forceHighPrecision

	bundle, info, diags, err := shaderpart.Compile(mod, opts)
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d.FormatWithContext(""))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Compilation error: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Compiled %s: stages=%v version=%s\n", inputPath, info.EmittedStages, info.RequiredVersion)

	if *outDir == "" {
		fmt.Println("// --- vertex ---")
		fmt.Println(bundle.VertexShader)
		fmt.Println("// --- fragment ---")
		fmt.Println(bundle.FragmentShader)
		return
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(filepath.Join(*outDir, "vertex.glsl"), []byte(bundle.VertexShader), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(filepath.Join(*outDir, "fragment.glsl"), []byte(bundle.FragmentShader), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s/vertex.glsl and %s/fragment.glsl\n", *outDir, *outDir)
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: shaderpartc [options] <program.json>\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  shaderpartc pipeline.json          Compile to stdout\n")
	fmt.Fprintf(os.Stderr, "  shaderpartc -o out pipeline.json   Compile to out/vertex.glsl, out/fragment.glsl\n")
}
