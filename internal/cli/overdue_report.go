package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/librarian/internal/clock"
	"github.com/mrlokans/librarian/internal/config"
	"github.com/mrlokans/librarian/internal/lending"
	"github.com/mrlokans/librarian/internal/services"
)

// OverdueReportCommand prints every overdue lending with the fine it would
// incur if returned today.
type OverdueReportCommand struct {
	DatabasePath string
	IDStrategy   string
	JSON         bool

	clock clock.Clock
	out   io.Writer
}

func NewOverdueReportCommand() *OverdueReportCommand {
	return &OverdueReportCommand{clock: clock.System{}, out: os.Stdout}
}

func (cmd *OverdueReportCommand) ParseFlags(args []string) error {
	cfg := config.NewConfig()
	fs := flag.NewFlagSet("overdue-report", flag.ContinueOnError)

	fs.StringVar(&cmd.DatabasePath, "db", cfg.Database.Path, "Path to the library database")
	fs.StringVar(&cmd.IDStrategy, "id-strategy", cfg.IDGeneration.Strategy, "Identifier layout: DIGIT_SUFFIX_TIMESTAMP or TIMESTAMP_DIGIT_SUFFIX")
	fs.BoolVar(&cmd.JSON, "json", false, "Print the report as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s overdue-report [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "List unreturned lendings past their limit date, most overdue first.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *OverdueReportCommand) Run() error {
	st, err := openStore(cmd.DatabasePath, cmd.IDStrategy, cmd.clock)
	if err != nil {
		return err
	}
	defer st.Close()

	svc := services.NewLendingService(st.books, st.readers, st.lendings, st.fines, st.audit, cmd.clock, services.LendingConfig{
		Policy: lending.DefaultPolicy(),
	})
	report, err := svc.OverdueReport()
	st.audit.LogOverdueReport(uuid.NewString(), len(report.Entries), report.TotalProjectedCents, err)
	if err != nil {
		return fmt.Errorf("failed to build overdue report: %w", err)
	}

	if cmd.JSON {
		enc := json.NewEncoder(cmd.out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return writeOverdueTable(cmd.out, report)
}

func writeOverdueTable(out io.Writer, report services.OverdueReport) error {
	fmt.Fprintf(out, "Overdue report for %s\n\n", report.GeneratedOn.Format(time.DateOnly))
	if len(report.Entries) == 0 {
		fmt.Fprintln(out, "No overdue lendings.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LENDING\tREADER\tTITLE\tDUE\tDAYS OVERDUE\tFINE")
	for _, e := range report.Entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			e.LendingNumber,
			e.ReaderNumber,
			e.Title,
			e.LimitDate.Format(time.DateOnly),
			e.DaysOverdue,
			services.CentsToAmount(int64(e.ProjectedFineCents)).StringFixed(2),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%d overdue, projected fines %s\n", len(report.Entries), report.TotalProjected().StringFixed(2))
	return nil
}
