package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	qcbor "github.com/plietar/qcbor.go/runtime"
)

// CLI defines the qcbordiag command-line interface.
//
// Input is either hex on the command line or a file of raw CBOR
// bytes. The decoded items are printed in RFC 8949 diagnostic
// notation, one top-level sequence per line.
type CLI struct {
	Hex      []string `arg:"" optional:"" help:"CBOR as hex (whitespace inside arguments is ignored)"`
	File     string   `short:"f" help:"Read raw CBOR bytes from a file instead"`
	Validate bool     `short:"c" help:"Only check well-formedness; print nothing on success"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("qcbordiag"),
		kong.Description("Print CBOR in RFC 8949 diagnostic notation."),
	)

	if err := run(&cli); err != nil {
		ctx.FatalIfErrorf(err)
	}
}

func run(cli *CLI) error {
	in, err := input(cli)
	if err != nil {
		return err
	}

	if cli.Validate {
		return qcbor.ValidateSequence(in)
	}

	out, err := qcbor.Diag(in)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	fmt.Println(out)
	return nil
}

func input(cli *CLI) ([]byte, error) {
	if cli.File != "" {
		if len(cli.Hex) != 0 {
			return nil, fmt.Errorf("both hex arguments and --file given")
		}
		b, err := os.ReadFile(cli.File)
		if err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
		return b, nil
	}
	if len(cli.Hex) == 0 {
		return nil, fmt.Errorf("no input; pass hex or --file")
	}
	joined := strings.Join(cli.Hex, "")
	joined = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '\n' {
			return -1
		}
		return r
	}, joined)
	b, err := hex.DecodeString(joined)
	if err != nil {
		return nil, fmt.Errorf("bad hex input: %w", err)
	}
	return b, nil
}
