package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// exitErr carries a numeric exit code through the cobra error path.
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func main() {
	var envFile string

	root := &cobra.Command{
		Use:           "flavourkitchen",
		Short:         "Flavour Kitchen recipe site",
		Long:          "Flavour Kitchen serves a recipe catalogue from a headless CMS, with search, categories and a contact form.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional .env file read beneath the process environment")

	root.AddCommand(
		newServeCmd(&envFile),
		newRecipesCmd(&envFile),
		newContactCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		var ee *exitErr
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		os.Exit(1)
	}
}
