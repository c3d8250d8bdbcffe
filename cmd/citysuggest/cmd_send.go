package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/andreiashu/citysuggest/contact"
)

var sendForm contact.Form

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Submit the contact form through the email relay",
	Long: `Forwards the form fields verbatim to the configured EmailJS template.
The outcome is printed once; a failed send is not retried.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		submitter := newSubmitter()

		receipt, err := submitter.Submit(cmd.Context(), sendForm)
		if err != nil {
			return fmt.Errorf("message not sent: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Message sent (id %s)\n", receipt.ID)
		return nil
	},
}

func init() {
	f := sendCmd.Flags()
	f.StringVar(&sendForm.Name, "name", "", "Sender first name")
	f.StringVar(&sendForm.Surname, "surname", "", "Sender surname")
	f.StringVar(&sendForm.Email, "email", "", "Sender email address")
	f.StringVar(&sendForm.Message, "message", "", "Message body")
	f.StringVar(&sendForm.Day1, "day1", "", "First preferred day")
	f.StringVar(&sendForm.Day2, "day2", "", "Second preferred day")
	f.StringVar(&sendForm.City, "city", "", "City, as picked in the autocomplete")
}

func newSubmitter() *contact.Submitter {
	opts := []contact.Option{contact.WithLogger(logger)}
	if cfg.Relay.MaxPerMinute > 0 {
		perMinute := rate.Every(time.Duration(float64(time.Minute) / cfg.Relay.MaxPerMinute))
		opts = append(opts, contact.WithRateLimit(perMinute, 1))
	}
	return contact.NewSubmitter(contact.NewEmailJSRelay(cfg.EmailJS(), nil), opts...)
}
