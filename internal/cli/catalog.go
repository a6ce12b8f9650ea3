package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/enums/internal/compiler"
	"github.com/roach88/enums/internal/enum"
	"github.com/roach88/enums/internal/ir"
	"github.com/roach88/enums/internal/store"
)

// DefaultCatalogPath is the database used when --db is not given.
const DefaultCatalogPath = "enums.db"

// CatalogOptions holds flags shared by the catalog subcommands.
type CatalogOptions struct {
	*RootOptions
	DB string
}

// SaveOptions holds flags for catalog save.
type SaveOptions struct {
	*CatalogOptions
	Include []string
	Enums   []string // restrict to these enumerations
	Lookups []string // Enum=literal value lookups run before saving
}

// SavedSnapshot reports one saved enumeration.
type SavedSnapshot struct {
	Enum         string `json:"enum"`
	DefinitionID string `json:"definition_id"`
	SnapshotID   string `json:"snapshot_id"`
	Entries      int    `json:"entries"`
	Seq          int64  `json:"seq"`
}

// CatalogEntry is one member line of catalog show.
type CatalogEntry struct {
	Name   string   `json:"name"`
	Value  ir.Value `json:"value"`
	Member string   `json:"member"`
	Alias  bool     `json:"alias,omitempty"`
}

// CatalogShowResult is the output of catalog show.
type CatalogShowResult struct {
	Enum    string         `json:"enum"`
	Kind    string         `json:"kind"`
	Members []MemberResult `json:"members"`
	History []CatalogEntry `json:"history"`
}

// NewCatalogCommand creates the catalog command and its subcommands.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CatalogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Store and restore enumerations in a SQLite catalog",
		Long: `Manage a SQLite catalog of enumeration definitions and registry snapshots.

Definitions are stored content-addressed. A snapshot records the full
declaration history of an enumeration, including members synthesized by
lookups, so a restore reproduces the registry exactly.`,
	}

	cmd.PersistentFlags().StringVar(&opts.DB, "db", DefaultCatalogPath, "catalog database path")

	cmd.AddCommand(newCatalogSaveCommand(opts))
	cmd.AddCommand(newCatalogListCommand(opts))
	cmd.AddCommand(newCatalogShowCommand(opts))
	cmd.AddCommand(newCatalogSnapshotsCommand(opts))

	return cmd
}

func newCatalogSaveCommand(catOpts *CatalogOptions) *cobra.Command {
	opts := &SaveOptions{CatalogOptions: catOpts}

	cmd := &cobra.Command{
		Use:   "save <path>",
		Short: "Build enumerations from definitions and save snapshots",
		Example: `  enums catalog save defs/ --db enums.db
  enums catalog save defs/ --enum Perm --lookup Perm=6 --lookup Perm=3`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogSave(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Include, "include", nil, "include patterns below a definitions directory")
	cmd.Flags().StringSliceVar(&opts.Enums, "enum", nil, "save only these enumerations")
	cmd.Flags().StringArrayVar(&opts.Lookups, "lookup", nil, "value lookup Enum=value to run before saving (repeatable)")

	return cmd
}

func runCatalogSave(opts *SaveOptions, target string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := commandContext(cmd)

	lookups, err := parseLookups(opts.Lookups)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	loadResult, loadErrors := LoadDefinitions(target, LoadOptions{
		Mode:    LoadModeFailFast,
		Include: opts.Include,
	})
	if len(loadErrors) > 0 {
		code, message := parseCompileError(loadErrors[0])
		return formatter.fail(ExitCommandError, code, message, nil)
	}
	if verrs := compiler.ValidateAll(loadResult.Definitions); len(verrs) > 0 {
		return outputValidationErrors(formatter, verrs)
	}

	defs := loadResult.Definitions
	if len(opts.Enums) > 0 {
		defs = selectDefinitions(defs, opts.Enums)
		if len(defs) != len(opts.Enums) {
			return formatter.fail(ExitCommandError, ErrCodeNotFound,
				fmt.Sprintf("enumerations not found: %s", strings.Join(missingNames(defs, opts.Enums), ", ")), nil)
		}
	}

	st, err := store.Open(opts.DB)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeStoreFailed, err.Error(), nil)
	}
	defer st.Close()

	logger := opts.Logger(formatter.GetErrWriter())
	saved := make([]SavedSnapshot, 0, len(defs))
	for _, def := range defs {
		e, err := enum.FromDefinition(def, enum.WithLogger(logger))
		if err != nil {
			return enumFailure(formatter, err)
		}
		for _, v := range lookups[def.Name] {
			if _, err := e.FromValue(v); err != nil {
				return enumFailure(formatter, err)
			}
		}

		snap, err := st.Save(ctx, def, e)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeStoreFailed, err.Error(), nil)
		}
		formatter.VerboseLog("Saved %s as snapshot %s", def.Name, snap.ID)
		saved = append(saved, SavedSnapshot{
			Enum:         def.Name,
			DefinitionID: snap.DefinitionID,
			SnapshotID:   snap.ID,
			Entries:      len(snap.Entries),
			Seq:          snap.Seq,
		})
	}

	if formatter.IsJSON() {
		return formatter.Success(saved)
	}

	fmt.Fprintf(formatter.Writer, "✓ Saved %d enumeration(s) to %s\n\n", len(saved), opts.DB)
	for _, s := range saved {
		fmt.Fprintf(formatter.Writer, "  %s: %d entr%s  snapshot %s\n", s.Enum, s.Entries, plural(s.Entries, "y", "ies"), s.SnapshotID)
	}
	return nil
}

// parseLookups parses Enum=literal pairs into values per enumeration.
func parseLookups(specs []string) (map[string][]ir.Value, error) {
	out := make(map[string][]ir.Value)
	for _, s := range specs {
		name, lit, ok := strings.Cut(s, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid lookup %q: want Enum=value", s)
		}
		out[name] = append(out[name], ir.ParseLiteral(lit))
	}
	return out, nil
}

func selectDefinitions(defs []ir.Definition, names []string) []ir.Definition {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []ir.Definition
	for _, def := range defs {
		if want[def.Name] {
			out = append(out, def)
		}
	}
	return out
}

func missingNames(defs []ir.Definition, names []string) []string {
	have := make(map[string]bool, len(defs))
	for _, def := range defs {
		have[def.Name] = true
	}
	var out []string
	for _, n := range names {
		if !have[n] {
			out = append(out, n)
		}
	}
	return out
}

func newCatalogListCommand(opts *CatalogOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List stored definitions",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(opts.RootOptions, cmd)

			st, err := store.Open(opts.DB)
			if err != nil {
				return formatter.fail(ExitCommandError, ErrCodeStoreFailed, err.Error(), nil)
			}
			defer st.Close()

			records, err := st.ListDefinitions(commandContext(cmd))
			if err != nil {
				return formatter.fail(ExitCommandError, ErrCodeStoreFailed, err.Error(), nil)
			}

			if formatter.IsJSON() {
				return formatter.Success(records)
			}
			if len(records) == 0 {
				fmt.Fprintln(formatter.Writer, "No definitions stored.")
				return nil
			}
			for _, r := range records {
				fmt.Fprintf(formatter.Writer, "%-20s %-9s %s  seq %d\n", r.Name, r.Kind, shortID(r.ID), r.Seq)
			}
			return nil
		},
	}
}

func newCatalogShowCommand(opts *CatalogOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <enum>",
		Short:         "Restore the latest snapshot of an enumeration",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(opts.RootOptions, cmd)

			st, err := store.Open(opts.DB)
			if err != nil {
				return formatter.fail(ExitCommandError, ErrCodeStoreFailed, err.Error(), nil)
			}
			defer st.Close()

			e, err := st.RestoreLatest(commandContext(cmd), args[0],
				enum.WithLogger(opts.Logger(formatter.GetErrWriter())))
			if errors.Is(err, sql.ErrNoRows) {
				return formatter.fail(ExitFailure, ErrCodeNotFound, fmt.Sprintf("enumeration %q is not in the catalog", args[0]), nil)
			}
			if err != nil {
				if enum.CodeOf(err) != "" {
					return enumFailure(formatter, err)
				}
				return formatter.fail(ExitCommandError, ErrCodeStoreFailed, err.Error(), nil)
			}

			return outputCatalogShow(formatter, newCatalogShowResult(e))
		},
	}
}

func newCatalogShowResult(e *enum.Enumeration) CatalogShowResult {
	result := CatalogShowResult{
		Enum: e.Name(),
		Kind: e.Kind().String(),
	}
	for m := range e.All() {
		result.Members = append(result.Members, newMemberResult(m))
	}
	names := e.NameMap()
	for _, entry := range e.History() {
		ce := CatalogEntry{Name: entry.Name, Value: entry.Value}
		if m, ok := names[entry.Name]; ok {
			ce.Member = m.String()
			ce.Alias = m.Name() != entry.Name
		} else if m, err := e.ByValue(entry.Value); err == nil {
			ce.Member = m.String()
		}
		result.History = append(result.History, ce)
	}
	return result
}

func outputCatalogShow(formatter *OutputFormatter, result CatalogShowResult) error {
	if formatter.IsJSON() {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "%s (%s)\n", result.Enum, result.Kind)
	for _, m := range result.Members {
		fmt.Fprintf(formatter.Writer, "  %s = %s\n", m.Member, ir.Format(m.Value))
	}
	var aliases []string
	for _, h := range result.History {
		if h.Alias {
			aliases = append(aliases, fmt.Sprintf("%s -> %s", h.Name, h.Member))
		}
	}
	if len(aliases) > 0 {
		fmt.Fprintf(formatter.Writer, "Aliases:\n  %s\n", strings.Join(aliases, "\n  "))
	}
	return nil
}

func newCatalogSnapshotsCommand(opts *CatalogOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "snapshots <enum>",
		Short:         "List the snapshots of an enumeration's latest definition",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(opts.RootOptions, cmd)
			ctx := commandContext(cmd)

			st, err := store.Open(opts.DB)
			if err != nil {
				return formatter.fail(ExitCommandError, ErrCodeStoreFailed, err.Error(), nil)
			}
			defer st.Close()

			defID, _, err := st.LatestDefinition(ctx, args[0])
			if errors.Is(err, sql.ErrNoRows) {
				return formatter.fail(ExitFailure, ErrCodeNotFound, fmt.Sprintf("enumeration %q is not in the catalog", args[0]), nil)
			}
			if err != nil {
				return formatter.fail(ExitCommandError, ErrCodeStoreFailed, err.Error(), nil)
			}

			snaps, err := st.ListSnapshots(ctx, defID)
			if err != nil {
				return formatter.fail(ExitCommandError, ErrCodeStoreFailed, err.Error(), nil)
			}

			if formatter.IsJSON() {
				return formatter.Success(snaps)
			}
			for _, s := range snaps {
				fmt.Fprintf(formatter.Writer, "%s  instance %s  seq %d\n", s.ID, s.InstanceID, s.Seq)
			}
			return nil
		},
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
