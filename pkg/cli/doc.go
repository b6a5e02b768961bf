/*
Package cli provides command-line helpers shared by the zabbup commands.

Output Formatting:

Commands that print tabular results implement Table and pick a formatter
from the --format flag:

	format, err := cli.ParseOutputFormat(flag)
	if err != nil {
		return err
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), table)

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
