package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Create movie_index and keyword_index if missing",
		Long: `Create the search indexes at their declared schema version and record the
version under schema:<index>:version. Existing indexes with a matching or
unrecorded version are left untouched; a recorded mismatch is an error.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			statuses, err := a.ensureSchema(cmd.Context())
			if err != nil {
				return err
			}
			for _, st := range statuses {
				state := "exists"
				if st.Created {
					state = "created"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s v%d %s\n", st.Index, st.Version, state)
			}
			return nil
		},
	}
}
