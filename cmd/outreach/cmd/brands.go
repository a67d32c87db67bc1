package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/outreachmail/outreach/internal/brands"
)

var (
	brandsCategory  string
	brandsFavorites string
)

var brandsCmd = &cobra.Command{
	Use:   "brands",
	Short: "List the brand directory",
	Long: `List the remote brand directory, falling back to the built-in list
when no directory is configured or it is unreachable.

Examples:
  outreach brands
  outreach brands --category "Most Popular"
  outreach brands --favorites <user-id>`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, live := loadBrands(cmd)

		if brandsCategory != "" && !live {
			filtered := list[:0]
			for _, b := range list {
				if b.Category == brandsCategory {
					filtered = append(filtered, b)
				}
			}
			list = filtered
		}

		if len(list) == 0 {
			fmt.Println("No brands found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tEMAIL\tCATEGORY")
		fmt.Fprintln(w, "────\t─────\t────────")
		for _, b := range list {
			if !b.Enabled {
				continue
			}
			email := b.Email
			if email == "" {
				email = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", b.Name, email, b.Category)
		}
		w.Flush()

		if !live {
			fmt.Println("\n(built-in list; configure [brands] for the live directory)")
		}
		return nil
	},
}

// loadBrands fetches the live directory when configured, honoring the
// category filter server-side; it reports whether the result is live.
func loadBrands(cmd *cobra.Command) ([]brands.Brand, bool) {
	d := newDirectory()
	if d == nil {
		return append([]brands.Brand(nil), brands.Builtin...), false
	}

	var (
		list []brands.Brand
		err  error
	)
	if brandsFavorites != "" {
		list, err = d.FetchFavoriteBrands(cmd.Context(), brandsFavorites)
	} else if brandsCategory != "" {
		list, err = d.FetchBrandsByCategory(cmd.Context(), brandsCategory)
	} else {
		list, err = d.FetchBrands(cmd.Context())
	}
	if err != nil {
		logger.Debug("brand directory unavailable", "error", err)
		return append([]brands.Brand(nil), brands.Builtin...), false
	}
	return list, true
}

func init() {
	brandsCmd.Flags().StringVar(&brandsCategory, "category", "", "Only brands in this category")
	brandsCmd.Flags().StringVar(&brandsFavorites, "favorites", "", "Only brands favorited by this directory user id")
	rootCmd.AddCommand(brandsCmd)
}
