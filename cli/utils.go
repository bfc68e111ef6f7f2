package cli

import (
	"github.com/absmach/supermq/pkg/errors"
	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
	"github.com/spf13/cobra"
)

var errJSONMarshal = errors.New("failed to marshal json")

func logJSONCmd(cmd cobra.Command, iList ...any) {
	for _, i := range iList {
		m, err := prettyjson.Marshal(i)
		if err != nil {
			logErrorCmd(cmd, errors.Wrap(errJSONMarshal, err))

			return
		}

		cmd.Printf("\n%s\n\n", string(m))
	}
}

func logUsageCmd(cmd cobra.Command, u string) {
	cmd.Printf(color.YellowString("\nusage: %s\n\n"), u)
}

func logErrorCmd(cmd cobra.Command, err error) {
	boldRed := color.New(color.FgRed, color.Bold)
	boldRed.Fprintf(cmd.ErrOrStderr(), "\nerror: ")

	cmd.PrintErrf("%s\n\n", color.RedString(err.Error()))
}

func logOKCmd(cmd cobra.Command) {
	cmd.Printf("\n%s\n\n", color.BlueString("ok"))
}

func logSuccessCmd(cmd cobra.Command, msg string) {
	cmd.Printf("%s\n", color.GreenString(msg))
}
