package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/sitepass/internal/cli"
	"github.com/aretw0/sitepass/internal/mailparse"
	"github.com/aretw0/sitepass/internal/presentation/tui"
	"github.com/aretw0/sitepass/pkg/domain"
	"github.com/aretw0/sitepass/pkg/induction"
	"github.com/aretw0/sitepass/pkg/maintenance"
	"github.com/spf13/cobra"
)

var advanceCmd = &cobra.Command{
	Use:   "advance",
	Short: "Record an incoming email and advance its conversation",
	Long: `Creates or advances the conversation identified by sender and subject, and prints
the next step. The email can be given with flags or read from an RFC 5322 file
with --eml (use '-' for stdin).`,
	Example: `  sitepass advance --email ops@acme.co.uk --subject "Boiler service" --attachment
  sitepass advance --eml reply.eml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sig, err := advanceSignals(cmd)
		if err != nil {
			return err
		}

		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		out, err := app.Service.Advance(cmd.Context(), sig)
		if err != nil {
			return err
		}
		return printer(cmd).Print(tui.ConversationReport(out), map[string]any{
			"message":               out.Message(),
			"new_status":            out.Status,
			"next_step_instruction": out.Instruction,
			"created":               out.Created,
		})
	},
}

func advanceSignals(cmd *cobra.Command) (domain.Signals, error) {
	emlPath, _ := cmd.Flags().GetString("eml")
	if emlPath == "" {
		email, _ := cmd.Flags().GetString("email")
		subject, _ := cmd.Flags().GetString("subject")
		attachment, _ := cmd.Flags().GetBool("attachment")
		engineers, _ := cmd.Flags().GetString("engineers")
		return domain.Signals{
			Email:             email,
			Subject:           subject,
			AttachmentPresent: attachment,
			EngineerNames:     domain.ParseEngineerNames(engineers),
		}, nil
	}

	var r io.Reader
	if emlPath == "-" {
		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		r = cli.NewInterruptibleReader(cmd.InOrStdin(), ctx.Done())
	} else {
		f, err := os.Open(emlPath)
		if err != nil {
			return domain.Signals{}, fmt.Errorf("failed to open %s: %w", emlPath, err)
		}
		defer f.Close()
		r = f
	}

	msg, err := mailparse.Parse(r)
	if err != nil {
		if cli.IsInterrupted(err) {
			return domain.Signals{}, errors.New("interrupted")
		}
		return domain.Signals{}, err
	}
	sig := msg.Signals()
	// Flags complete what the message does not carry.
	if cmd.Flags().Changed("attachment") {
		sig.AttachmentPresent, _ = cmd.Flags().GetBool("attachment")
	}
	if cmd.Flags().Changed("engineers") {
		names, _ := cmd.Flags().GetString("engineers")
		sig.EngineerNames = domain.ParseEngineerNames(names)
	}
	return sig, nil
}

var inductionsCmd = &cobra.Command{
	Use:   "inductions",
	Short: "Check engineer inductions against a maintenance date",
	Example: `  sitepass inductions --company acme --engineers "Alice, Bob" --date 2024-06-01`,
	RunE: func(cmd *cobra.Command, args []string) error {
		company, _ := cmd.Flags().GetString("company")
		engineers, _ := cmd.Flags().GetString("engineers")
		date, _ := cmd.Flags().GetString("date")

		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		results, err := app.Service.CheckInductions(cmd.Context(), company, domain.ParseEngineerNames(engineers), date)
		if err != nil {
			return err
		}
		return printer(cmd).Print(tui.InductionReport(company, results), map[string]any{
			"results": induction.Messages(results),
			"details": results,
		})
	},
}

var maintenanceCmd = &cobra.Command{
	Use:   "maintenance",
	Short: "Check a requested date against the maintenance window",
	Example: `  sitepass maintenance --equipment Boiler --company acme --date 15/03/24`,
	RunE: func(cmd *cobra.Command, args []string) error {
		equipment, _ := cmd.Flags().GetString("equipment")
		company, _ := cmd.Flags().GetString("company")
		date, _ := cmd.Flags().GetString("date")

		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		p := printer(cmd)
		w, err := app.Service.CheckMaintenance(cmd.Context(), equipment, company, date)
		if errors.Is(err, domain.ErrRecordNotFound) {
			msg := maintenance.NotFoundMessage(equipment, company)
			if p.JSON() {
				return p.Print("", map[string]any{"status": "error", "message": msg})
			}
			p.Notice("%s", msg)
			return nil
		}
		if err != nil {
			return err
		}
		return p.Print(tui.WindowReport(equipment, company, w), map[string]any{
			"status":           w.Status(),
			"message":          w.Message(),
			"within_window":    w.WithinWindow,
			"scheduled_months": w.ScheduledMonths,
		})
	},
}

func init() {
	rootCmd.AddCommand(advanceCmd, inductionsCmd, maintenanceCmd)

	advanceCmd.Flags().String("email", "", "Sender email address")
	advanceCmd.Flags().String("subject", "", "Email subject")
	advanceCmd.Flags().Bool("attachment", false, "The email carries the RAMS attachment")
	advanceCmd.Flags().String("engineers", "", "Comma-separated engineer names given in the email")
	advanceCmd.Flags().String("eml", "", "Read the email from an RFC 5322 file ('-' for stdin)")

	inductionsCmd.Flags().String("company", "", "Contractor company name")
	inductionsCmd.Flags().String("engineers", "", "Comma-separated engineer names")
	inductionsCmd.Flags().String("date", "", "Maintenance date")
	_ = inductionsCmd.MarkFlagRequired("company")
	_ = inductionsCmd.MarkFlagRequired("date")

	maintenanceCmd.Flags().String("equipment", "", "Equipment name")
	maintenanceCmd.Flags().String("company", "", "Contractor company name")
	maintenanceCmd.Flags().String("date", "", "Requested date (DD/MM/YY)")
	_ = maintenanceCmd.MarkFlagRequired("equipment")
	_ = maintenanceCmd.MarkFlagRequired("company")
	_ = maintenanceCmd.MarkFlagRequired("date")
}
