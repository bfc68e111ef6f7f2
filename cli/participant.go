package cli

import (
	"encoding/json"
	"os"

	"github.com/absmach/fedlearn/pkg/fl"
	"github.com/absmach/fedlearn/pkg/sdk"
	"github.com/absmach/supermq/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	errReadModel  = errors.New("failed to read model file")
	errParseModel = errors.New("failed to parse model file")

	psdk sdk.SDK
	wait string
)

func SetParticipantSDK(s sdk.SDK) {
	psdk = s
}

func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Participant status",
		Long: `Show the participant status.

Examples:
  # Block until the participant is selected for a round
  fedlearn-cli status --wait selected`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 0 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			s, err := psdk.Status(wait)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, s)
		},
	}

	cmd.Flags().StringVarP(&wait, "wait", "w", "", "Wait until the participant is selected or reaches the next round (selected|next_round)")

	return cmd
}

func NewModelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model [get|submit]",
		Short: "Model exchange",
		Long:  `Get the latest global model or submit a locally trained one.`,
	}

	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Get global model",
		Long:  `Get the latest global model fetched by the participant.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 0 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			m, err := psdk.GlobalModel()
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, m)
		},
	}

	submitCmd := &cobra.Command{
		Use:   "submit <model.json>",
		Short: "Submit local model",
		Long: `Submit a locally trained model to a participant running in async mode.

Examples:
  # model.json: {"data_type": "f32", "values": [0.1, 0.2]}
  fedlearn-cli model submit model.json`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 1 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				logErrorCmd(*cmd, errors.Wrap(errReadModel, err))

				return
			}
			var m fl.Model
			if err := json.Unmarshal(data, &m); err != nil {
				logErrorCmd(*cmd, errors.Wrap(errParseModel, err))

				return
			}

			if err := psdk.SubmitModel(m); err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logOKCmd(*cmd)
		},
	}

	cmd.AddCommand(getCmd)
	cmd.AddCommand(submitCmd)

	return cmd
}

func NewStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop participant",
		Long:  `Stop the participant and save its snapshot.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 0 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			res, err := psdk.Stop()
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, res)
		},
	}
}

func NewHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Participant health",
		Long:  `Check the participant health.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 0 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			h, err := psdk.Health()
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, h)
		},
	}
}
