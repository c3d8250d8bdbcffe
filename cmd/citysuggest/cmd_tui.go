package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/andreiashu/citysuggest"
	"github.com/andreiashu/citysuggest/cmd/citysuggest/ui"
)

var tuiSend bool

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Pick a city interactively",
	Long: `Opens the autocomplete in the terminal. Typing searches immediately, even
while partitions are still loading; arrow keys move through the results and
enter picks one. The chosen city is printed on exit.

With --send the chosen city is submitted with the contact form flags.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Log lines would tear through the terminal UI.
		engine, in, err := startLoad(cmd.Context(), zap.NewNop())
		if err != nil {
			return err
		}

		session := citysuggest.NewSession(engine)
		session.OnCommit(func(name string) { sendForm.City = name })

		w := ui.NewWidget(session, in)
		defer w.Close()
		if _, err := tea.NewProgram(w, tea.WithContext(cmd.Context())).Run(); err != nil {
			return fmt.Errorf("running terminal UI: %w", err)
		}

		if w.Chosen() == "" {
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), w.Chosen())

		if !tuiSend {
			return nil
		}
		receipt, err := newSubmitter().Submit(cmd.Context(), sendForm)
		if err != nil {
			return fmt.Errorf("message not sent: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Message sent (id %s)\n", receipt.ID)
		return nil
	},
}

func init() {
	tuiCmd.Flags().BoolVar(&tuiSend, "send", false, "Submit the contact form with the chosen city")
	f := tuiCmd.Flags()
	f.StringVar(&sendForm.Name, "name", "", "Sender first name")
	f.StringVar(&sendForm.Surname, "surname", "", "Sender surname")
	f.StringVar(&sendForm.Email, "email", "", "Sender email address")
	f.StringVar(&sendForm.Message, "message", "", "Message body")
	f.StringVar(&sendForm.Day1, "day1", "", "First preferred day")
	f.StringVar(&sendForm.Day2, "day2", "", "Second preferred day")
}
