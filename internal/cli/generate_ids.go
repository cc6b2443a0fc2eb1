package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mrlokans/librarian/internal/config"
	"github.com/mrlokans/librarian/internal/idgen"
)

// GenerateIDsCommand prints identifiers from a fresh allocator, optionally
// with their decoded timestamp and counter.
type GenerateIDsCommand struct {
	Count    int
	Strategy string
	Decode   bool

	out io.Writer
}

func NewGenerateIDsCommand() *GenerateIDsCommand {
	return &GenerateIDsCommand{out: os.Stdout}
}

func (cmd *GenerateIDsCommand) ParseFlags(args []string) error {
	cfg := config.NewConfig()
	fs := flag.NewFlagSet("generate-ids", flag.ContinueOnError)

	fs.IntVar(&cmd.Count, "n", 5, "Number of identifiers to generate")
	fs.StringVar(&cmd.Strategy, "strategy", cfg.IDGeneration.Strategy, "Identifier layout: DIGIT_SUFFIX_TIMESTAMP or TIMESTAMP_DIGIT_SUFFIX")
	fs.BoolVar(&cmd.Decode, "decode", false, "Print the timestamp and counter encoded in each identifier")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s generate-ids [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.Count <= 0 {
		return fmt.Errorf("-n must be positive")
	}
	return nil
}

func (cmd *GenerateIDsCommand) Run() error {
	strategy, err := idgen.ParseStrategy(cmd.Strategy)
	if err != nil {
		return err
	}

	alloc := idgen.NewAllocator(strategy)
	for i := 0; i < cmd.Count; i++ {
		id := alloc.Next()
		if !cmd.Decode {
			fmt.Fprintln(cmd.out, id)
			continue
		}
		ts, counter := strategy.Decode(id)
		fmt.Fprintf(cmd.out, "%d\t%s\t%d\n", id, time.UnixMilli(ts).UTC().Format(time.RFC3339Nano), counter)
	}
	return nil
}
