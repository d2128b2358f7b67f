package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/selfassess/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and validate questionnaire catalogs",
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a questionnaire document (defaults to the built-in catalog)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := catalog.Default()
		if len(args) == 1 {
			var err error
			if c, err = catalog.LoadFile(args[0]); err != nil {
				return err
			}
		}

		issues := c.Validate()
		tw := newTable(cmd.ErrOrStderr())
		for _, is := range issues {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", is.Severity, is.QuestionID, is.Message)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		if errs := catalog.Errors(issues); len(errs) > 0 {
			return fmt.Errorf("%d validation errors", len(errs))
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %d questions, %d sections, %d warnings\n",
			c.Name(), c.Version(), c.Len(), len(c.Sections()), len(issues))
		return err
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the questions of the built-in catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetBool("json")
		c := catalog.Default()
		out := cmd.OutOrStdout()
		if raw {
			_, err := out.Write(catalog.DefaultJSON())
			return err
		}

		tw := newTable(out)
		fmt.Fprintln(tw, "ID\tSECTION\tTYPE\tQUESTION")
		for _, q := range c.Questions() {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", q.ID, q.Section, q.Type, truncate(q.Text, 60))
		}
		return tw.Flush()
	},
}

func init() {
	catalogShowCmd.Flags().Bool("json", false, "Print the raw questionnaire document")

	catalogCmd.AddCommand(catalogValidateCmd, catalogShowCmd)
}
