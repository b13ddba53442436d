package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yanizio/formrelay/internal/submission"
)

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "list contact|waitlist",
		Short:     "Print recent submissions, newest first",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(submission.CategoryContact), string(submission.CategoryWaitlist)},
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			format, _ := cmd.Flags().GetString("output")

			cat, err := submission.ParseCategory(args[0])
			if err != nil {
				return err
			}

			be, cfg, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer be.Close()

			q := submission.NewQuery(be, cfg.Admin.DefaultLimit, cfg.Admin.MaxLimit)
			var items any
			switch cat {
			case submission.CategoryContact:
				items, err = q.Contacts(cmd.Context(), limit)
			case submission.CategoryWaitlist:
				items, err = q.Waitlist(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), format, items)
		},
	}

	cmd.Flags().IntP("limit", "n", 0, "maximum records (0 = configured default)")
	cmd.Flags().StringP("output", "o", "json", "output format (json, yaml)")
	return cmd
}

// render writes v as indented JSON or YAML.  YAML goes through a JSON
// round-trip so field names match the API.
func render(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(generic)
	default:
		return fmt.Errorf("unknown output format %q (want json or yaml)", format)
	}
}
