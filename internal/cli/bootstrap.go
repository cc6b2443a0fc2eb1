package cli

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/librarian/internal/audit"
	"github.com/mrlokans/librarian/internal/clock"
	"github.com/mrlokans/librarian/internal/config"
)

// BootstrapCommand imports books, readers and historical lendings from a
// JSON fixture.
type BootstrapCommand struct {
	FixturePath            string
	DatabasePath           string
	IDStrategy             string
	AuditDir               string
	DurationInDays         int
	FineValuePerDayInCents int
	Verbose                bool
	DryRun                 bool

	clock clock.Clock
}

func NewBootstrapCommand() *BootstrapCommand {
	return &BootstrapCommand{clock: clock.System{}}
}

func (cmd *BootstrapCommand) ParseFlags(args []string) error {
	cfg := config.NewConfig()
	fs := flag.NewFlagSet("bootstrap", flag.ContinueOnError)

	fs.StringVar(&cmd.FixturePath, "file", "", "Path to the JSON fixture (required)")
	fs.StringVar(&cmd.DatabasePath, "db", cfg.Database.Path, "Path to the library database")
	fs.StringVar(&cmd.IDStrategy, "id-strategy", cfg.IDGeneration.Strategy, "Identifier layout: DIGIT_SUFFIX_TIMESTAMP or TIMESTAMP_DIGIT_SUFFIX")
	fs.StringVar(&cmd.AuditDir, "audit-dir", cfg.Audit.Dir, "Directory receiving a copy of every imported fixture (empty disables)")
	fs.IntVar(&cmd.DurationInDays, "duration", cfg.Lending.DurationInDays, "Lending duration in days when the fixture does not set one")
	fs.IntVar(&cmd.FineValuePerDayInCents, "fine", cfg.Lending.FineValuePerDayInCents, "Fine per day in cents when the fixture does not set one")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose output")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Validate the fixture without writing anything")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s bootstrap -file <fixture.json> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import books, readers and historical lendings. Lendings returned after\n")
		fmt.Fprintf(os.Stderr, "their limit date get their fine stored as well.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s bootstrap -file library.json -dry-run -verbose\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.FixturePath == "" {
		return fmt.Errorf("required flag -file not provided")
	}
	if cmd.DurationInDays <= 0 {
		return fmt.Errorf("-duration must be positive")
	}
	if cmd.FineValuePerDayInCents < 0 {
		return fmt.Errorf("-fine must not be negative")
	}
	return nil
}

func (cmd *BootstrapCommand) Run() error {
	fmt.Println("Library Bootstrap")
	fmt.Println("=================")

	if cmd.DryRun {
		fmt.Println("DRY RUN MODE - No changes will be made")
		fmt.Println()
	}

	fx, err := loadFixture(cmd.FixturePath)
	if err != nil {
		return err
	}
	fmt.Printf("Found %d books, %d readers, %d lendings\n", len(fx.Books), len(fx.Readers), len(fx.Lendings))

	if cmd.Verbose {
		for _, l := range fx.Lendings {
			returned := "active"
			if l.ReturnedDate != "" {
				returned = "returned " + l.ReturnedDate
			}
			fmt.Printf("  -> %s lent to %s on %s (%s)\n", l.ISBN, l.ReaderNumber, l.StartDate, returned)
		}
	}

	if cmd.DryRun {
		fmt.Println("\nDry run complete. Use without -dry-run to import.")
		return nil
	}

	if cmd.AuditDir != "" {
		name, err := audit.NewArchiver(cmd.AuditDir).SaveJSON("bootstrap", fx)
		if err != nil {
			return err
		}
		fmt.Printf("Archived fixture as %s\n", name)
	}

	st, err := openStore(cmd.DatabasePath, cmd.IDStrategy, cmd.clock)
	if err != nil {
		return err
	}
	defer st.Close()

	fmt.Printf("\nSaving to database: %s\n", cmd.DatabasePath)

	importer := &Importer{
		Books:                  st.books,
		Readers:                st.readers,
		Lendings:               st.lendings,
		Clock:                  cmd.clock,
		DurationInDays:         cmd.DurationInDays,
		FineValuePerDayInCents: cmd.FineValuePerDayInCents,
	}
	res, err := importer.Import(fx)
	st.audit.LogImport(fmt.Sprintf("Bootstrap from %s", cmd.FixturePath), res.Lendings, res.Fines, err)
	if err != nil {
		return err
	}

	fmt.Println("\n=== Import Summary ===")
	fmt.Printf("Books: %d\n", res.Books)
	fmt.Printf("Readers: %d\n", res.Readers)
	fmt.Printf("Lendings saved: %d/%d\n", res.Lendings, len(fx.Lendings))
	fmt.Printf("Fines stored: %d\n", res.Fines)

	if len(res.Errors) > 0 {
		fmt.Printf("\n%d errors occurred:\n", len(res.Errors))
		for _, msg := range res.Errors {
			fmt.Printf("  [ERROR] %s\n", msg)
		}
	}

	fmt.Println("\nImport complete!")
	return nil
}

func loadFixture(path string) (Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Fixture{}, fmt.Errorf("fixture not found: %s", path)
		}
		return Fixture{}, fmt.Errorf("failed to read fixture: %w", err)
	}

	var fx Fixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		return Fixture{}, fmt.Errorf("failed to parse fixture: %w", err)
	}
	if err := fx.Validate(); err != nil {
		return Fixture{}, fmt.Errorf("invalid fixture: %w", err)
	}
	return fx, nil
}
