package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"schedcal/internal/nlp"
	"schedcal/internal/speech"
)

// SayCmd returns the say command
func SayCmd() *cobra.Command {
	var voice bool

	cmd := &cobra.Command{
		Use:   "say [phrase]",
		Short: "Add an event from a natural-language phrase",
		Long: `Parse a phrase like "Add gym on Wednesday for Vinoth at 7pm" and add the
event. With --voice, the phrase comes from the configured transcribe
command instead of the arguments.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, svc, err := setup()
			if err != nil {
				return err
			}

			text := strings.Join(args, " ")
			if voice {
				tr, err := speech.NewCommand(cfg.TranscribeCmd)
				if err != nil {
					return err
				}
				text, err = tr.Transcribe(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Printf("You said: %s\n", text)
			}
			if strings.TrimSpace(text) == "" {
				return errors.New("nothing to parse; pass a phrase or --voice")
			}

			result, err := svc.AddText(cmd.Context(), text)
			if errors.Is(err, nlp.ErrNoMatch) || errors.Is(err, nlp.ErrUnresolvedDate) {
				return fmt.Errorf(`%w (try: "Add gym on Wednesday for Vinoth")`, err)
			}
			return report(result, err, "Event added from natural input.")
		},
	}

	cmd.Flags().BoolVar(&voice, "voice", false, "Take the phrase from the transcribe command")
	return cmd
}
