// Command exldump lexes and parses a source file and prints its token
// stream and parse tree. It exists to exercise the public lex/parse
// API end to end; it does not compile or evaluate anything (spec §1
// "Non-goals" excludes bytecode emission and execution from this
// module's scope).
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/cbarrick/exl/lex"
	"github.com/cbarrick/exl/parse"
)

func main() {
	tokensOnly := flag.Bool("tokens", false, "print only the token stream, skip parsing")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	log := hclog.New(&hclog.LoggerOptions{
		Name:  "exldump",
		Level: hclog.Warn,
	})
	if *verbose {
		log.SetLevel(hclog.Debug)
	}

	var src []byte
	var err error
	if args := flag.Args(); len(args) > 0 {
		src, err = os.ReadFile(args[0])
	} else {
		src, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		log.Error("reading source", "error", err)
		os.Exit(1)
	}

	if *tokensOnly {
		dumpTokens(log, string(src))
		return
	}
	dumpParse(log, string(src))
}

func dumpTokens(log hclog.Logger, src string) {
	l := lex.NewFromString(src, lex.WithLogger(log))
	for {
		tok, err := l.NextToken()
		if err == io.EOF {
			return
		}
		if err != nil {
			log.Error("lexing", "error", err)
			os.Exit(1)
		}
		fmt.Println(tok)
	}
}

func dumpParse(log hclog.Logger, src string) {
	l := lex.NewFromString(src, lex.WithLogger(log))
	result, err := parse.Parse(l, parse.WithLogger(log))
	if err != nil {
		log.Error("parsing", "error", err)
	}
	if result.Root == parse.NoIndex {
		fmt.Println("(empty)")
		return
	}
	printNode(result, result.Root, 0)
	if err != nil {
		os.Exit(1)
	}
}

func printNode(res parse.Result, idx, depth int) {
	n := res.Nodes[idx]
	fmt.Printf("%*s%v %q\n", depth*2, "", n.Definition, n.Token.Text)
	if n.Left != parse.NoIndex {
		printNode(res, n.Left, depth+1)
	}
	if n.Right != parse.NoIndex {
		printNode(res, n.Right, depth+1)
	}
}
