// tubegen is a CLI utility that turns tube documents into meshes.
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "build", "b":
		err = cmdBuild(args)
	case "lods", "lod":
		err = cmdLODs(args)
	case "info":
		err = cmdInfo(args)
	case "watch", "w":
		err = cmdWatch(args)
	case "init":
		err = cmdInit(args)
	case "config":
		err = cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tubegen - procedural tube mesh generator

Usage:
  tubegen <command> [options]

Commands:
  build <doc.yaml>          Build the tube mesh
  lods <doc.yaml>           Build the tube mesh and its LODs
  info <doc.yaml|mesh.stl>  Show tube or mesh statistics
  watch <doc.yaml>          Rebuild whenever the document is saved
  init <doc.yaml>           Write a starter document
  config [-save] [path]     Print or save the effective configuration

Options (all commands):
  -config <path>   Config file (default: tubegen.yaml beside the document,
                   then ./tubegen.yaml, then the user config dir)
  -sides <n>       Override the number of sides
  -radius <r>      Override the tube radius
  -format <fmt>    Export format: obj, stl
  -out <dir>       Output directory
  -debug           Enable debug logging

Examples:
  tubegen init pipe.yaml
  tubegen build pipe.yaml -o pipe.stl
  tubegen lods pipe.yaml -n 3 -step 2
  tubegen watch pipe.yaml -format stl -out build
  tubegen config -sides 12 -save`)
}
