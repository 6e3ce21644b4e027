// Command validate checks case files for structural and referential
// errors before they ship.
//
//	validate data/cases/missing-heiress.json
//	validate data/cases/
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jwebster45206/mystery-engine/pkg/casefile"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s <case-file.json | case-dir>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if info.IsDir() {
		cases, err := casefile.LoadDir(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "validation failed:\n%v\n", err)
			os.Exit(1)
		}
		for id, c := range cases {
			mode := "fixed"
			if c.Mode() == casefile.ModeEmergent {
				mode = "emergent"
			}
			fmt.Printf("ok: %s (%q, %s, %d npcs, %d clues, %d locations)\n",
				id, c.Title, mode, len(c.NPCs), len(c.Clues), len(c.Locations))
		}
		return
	}

	c, err := casefile.LoadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "validation failed:\n%v\n", err)
		os.Exit(1)
	}
	fmt.Printf("ok: %s (%q)\n", c.ID, c.Title)
}
