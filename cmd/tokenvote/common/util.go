package common

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tokenvote/tokenvote/lib/errors"
)

func errorMessage(err error) string {
	if codedError, ok := err.(*errors.Error); ok {
		return codedError.Message
	}
	return err.Error()
}

// PrintFlagsError reports a bad flag value on stderr, prints the command
// help and exits.
func PrintFlagsError(cmd *cobra.Command, flagName string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid '%s'; %s\n\n", flagName, errorMessage(err))
	}

	cmd.Help()

	os.Exit(1)
}

func PrintError(cmd *cobra.Command, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n\n", errorMessage(err))
	}

	cmd.Help()

	os.Exit(1)
}

// ListFlags collects a repeatable string flag.
type ListFlags []string

func (i *ListFlags) Type() string {
	return "list"
}

func (i *ListFlags) String() string {
	return strings.Join([]string(*i), " ")
}

func (i *ListFlags) Set(value string) error {
	*i = append(*i, value)
	return nil
}
