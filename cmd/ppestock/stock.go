package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/subcommands"

	"github.com/erazemk/ppestock/internal/config"
	"github.com/erazemk/ppestock/internal/export"
	"github.com/erazemk/ppestock/internal/ledger"
	"github.com/erazemk/ppestock/internal/model"
	"github.com/erazemk/ppestock/internal/persist/remote"
	"github.com/erazemk/ppestock/internal/proofs"
	"github.com/erazemk/ppestock/internal/tracker"
	"github.com/erazemk/ppestock/internal/txlog"
)

type stockCmd struct {
	cfg *config.Config
	low bool
}

func (*stockCmd) Name() string     { return "stock" }
func (*stockCmd) Synopsis() string { return "print current balances" }
func (*stockCmd) Usage() string {
	return `stock [-low] [-db <path>] [-backend kv|sql|remote]

  Prints every item variant and its balance, or with -low only variants
  under the low-stock threshold (PPE_LOW_STOCK).
`
}

func (c *stockCmd) SetFlags(f *flag.FlagSet) {
	backendFlags(f, c.cfg)
	f.BoolVar(&c.low, "low", false, "only show low-stock variants")
	f.IntVar(&c.cfg.LowStock, "threshold", c.cfg.LowStock, "low-stock threshold")
}

func (c *stockCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	b, err := openBackend(ctx, c.cfg)
	if err != nil {
		return fail("%v", err)
	}
	defer b.Close()
	t, err := b.tracker(ctx, c.cfg)
	if err != nil {
		return fail("%v", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCATEGORY\tITEM\tVARIANT\tBALANCE")
	if c.low {
		for _, e := range t.LowStock(c.cfg.LowStock) {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", e.ItemID, e.Category, e.ItemName, e.VariantLabel, e.Balance)
		}
	} else {
		for _, it := range t.Items() {
			for _, v := range it.Variants {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s (%s)\t%d\n", it.ID, it.Category, it.Name, v.Label, v.Code, v.Balance)
			}
		}
	}
	w.Flush()

	s := t.Summary()
	fmt.Printf("\n%d items, %d variants, %d units, %d low\n", s.TotalItems, s.TotalVariants, s.TotalQuantity, s.LowStockCount)
	return subcommands.ExitSuccess
}

// movementFlags are the flags shared by issue and return.
type movementFlags struct {
	req      tracker.MovementRequest
	lat, lng float64
}

func (m *movementFlags) set(f *flag.FlagSet) {
	f.Int64Var(&m.req.ItemID, "item", 0, "item ID")
	f.StringVar(&m.req.VariantCode, "variant", "", "variant code")
	f.IntVar(&m.req.Quantity, "qty", 0, "quantity")
	f.StringVar(&m.req.Employee, "employee", "", "employee name")
	f.StringVar(&m.req.Site, "site", "", "site name (with -superior instead of -employee)")
	f.StringVar(&m.req.Superior, "superior", "", "superior responsible for a site")
	f.StringVar(&m.req.ProofRef, "proof", "", "proof reference from a photo upload")
	f.Float64Var(&m.lat, "lat", 0, "latitude")
	f.Float64Var(&m.lng, "lng", 0, "longitude")
}

func (m *movementFlags) request() tracker.MovementRequest {
	req := m.req
	if m.lat != 0 || m.lng != 0 {
		req.Location = &model.Location{Lat: m.lat, Lng: m.lng}
	}
	return req
}

// move applies a movement through the server when remote, so the balance
// check runs there, and through a local tracker otherwise.
func move(ctx context.Context, cfg *config.Config, typ model.TxType, req tracker.MovementRequest) (tracker.Receipt, error) {
	b, err := openBackend(ctx, cfg)
	if err != nil {
		return tracker.Receipt{}, err
	}
	defer b.Close()

	if b.client != nil {
		return b.client.CreateTransaction(ctx, typ, req)
	}
	t, err := b.tracker(ctx, cfg)
	if err != nil {
		return tracker.Receipt{}, err
	}
	if typ == model.TxOut {
		return t.Issue(ctx, req)
	}
	return t.Return(ctx, req)
}

func printReceipt(rec tracker.Receipt) {
	fmt.Println(rec.Result.Message)
	fmt.Printf("Transaction %s, balance now %d\n", rec.Transaction.ID, rec.Result.Balance)
}

func describe(err error) string {
	var short *ledger.InsufficientStockError
	if errors.As(err, &short) {
		return fmt.Sprintf("only %d in stock, %d requested", short.Current, short.Requested)
	}
	return err.Error()
}

type issueCmd struct {
	cfg *config.Config
	movementFlags
}

func (*issueCmd) Name() string     { return "issue" }
func (*issueCmd) Synopsis() string { return "issue stock to an employee or site" }
func (*issueCmd) Usage() string {
	return `issue -item <id> -variant <code> -qty <n> (-employee <name> | -site <name> -superior <name>) -proof <ref>
`
}

func (c *issueCmd) SetFlags(f *flag.FlagSet) {
	backendFlags(f, c.cfg)
	c.movementFlags.set(f)
}

func (c *issueCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	rec, err := move(ctx, c.cfg, model.TxOut, c.request())
	if err != nil {
		return fail("%s", describe(err))
	}
	printReceipt(rec)
	return subcommands.ExitSuccess
}

type returnCmd struct {
	cfg  *config.Config
	txID string
	movementFlags
}

func (*returnCmd) Name() string     { return "return" }
func (*returnCmd) Synopsis() string { return "return stock, optionally against an earlier issue" }
func (*returnCmd) Usage() string {
	return `return -tx <id> -qty <n>
return -item <id> -variant <code> -qty <n> -employee <name> -proof <ref>

  With -tx, records a partial return against that issue. Otherwise records
  a standalone return.
`
}

func (c *returnCmd) SetFlags(f *flag.FlagSet) {
	backendFlags(f, c.cfg)
	c.movementFlags.set(f)
	f.StringVar(&c.txID, "tx", "", "issue transaction ID for a partial return")
}

func (c *returnCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if c.txID == "" {
		rec, err := move(ctx, c.cfg, model.TxIn, c.request())
		if err != nil {
			return fail("%s", describe(err))
		}
		printReceipt(rec)
		return subcommands.ExitSuccess
	}

	b, err := openBackend(ctx, c.cfg)
	if err != nil {
		return fail("%v", err)
	}
	defer b.Close()

	var rec tracker.ReturnReceipt
	if b.client != nil {
		rec, err = b.client.ReturnPartial(ctx, c.txID, c.req.Quantity)
	} else {
		var t *tracker.Tracker
		if t, err = b.tracker(ctx, c.cfg); err == nil {
			rec, err = t.PartialReturn(ctx, c.txID, c.req.Quantity)
		}
	}
	if err != nil {
		return fail("%s", describe(err))
	}
	fmt.Println(rec.Result.Message)
	fmt.Printf("%d returned, %d still out\n", rec.Entry.ReturnedQuantity, rec.Entry.RemainingQuantity)
	return subcommands.ExitSuccess
}

type exportCmd struct {
	cfg  *config.Config
	date string
	out  string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write one day's transactions to an xlsx file" }
func (*exportCmd) Usage() string {
	return `export [-date YYYY-MM-DD] [-o <file>]
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	backendFlags(f, c.cfg)
	f.StringVar(&c.date, "date", time.Now().Format(time.DateOnly), "day to export")
	f.StringVar(&c.out, "o", "", "output file (default Transactions_<date>.xlsx)")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if _, err := time.Parse(time.DateOnly, c.date); err != nil {
		return fail("date must be YYYY-MM-DD")
	}
	if c.out == "" {
		c.out = export.FileName(c.date)
	}

	b, err := openBackend(ctx, c.cfg)
	if err != nil {
		return fail("%v", err)
	}
	defer b.Close()

	f, err := os.Create(c.out)
	if err != nil {
		return fail("%v", err)
	}
	if b.client != nil {
		err = b.client.Export(ctx, c.date, f)
	} else {
		err = c.writeLocal(ctx, b, f)
	}
	if err != nil {
		f.Close()
		os.Remove(c.out)
		if errors.Is(err, export.ErrNoTransactions) || remote.KindOf(err) == "no_transactions" {
			return fail("no transactions on %s", c.date)
		}
		return fail("%v", err)
	}
	if err := f.Close(); err != nil {
		return fail("%v", err)
	}
	fmt.Printf("Wrote %s\n", c.out)
	return subcommands.ExitSuccess
}

func (c *exportCmd) writeLocal(ctx context.Context, b *backend, w io.Writer) error {
	t, err := b.tracker(ctx, c.cfg)
	if err != nil {
		return err
	}
	txs := t.Transactions(txlog.Query{From: c.date, To: c.date})
	refs := make([]string, len(txs))
	for i, tx := range txs {
		refs[i] = tx.ProofRef
	}
	names, err := proofs.Names(ctx, b.db, refs)
	if err != nil {
		return err
	}
	return export.Write(w, txs, c.date, names)
}
