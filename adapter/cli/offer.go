package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/keyturn/keyturn/internal/app"
	"github.com/keyturn/keyturn/internal/rentals/application/commands"
	"github.com/keyturn/keyturn/internal/rentals/application/queries"
)

func newOfferCmd(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "offer",
		Short: "Inspect and act on offers",
	}

	cmd.AddCommand(newOfferStatusCmd(c))
	cmd.AddCommand(newOfferApproveCmd(c))
	cmd.AddCommand(newOfferRejectCmd(c))

	return cmd
}

func newOfferStatusCmd(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "status <offer-id>",
		Short: "Show an offer's move-in verification status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			offerID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid offer id: %w", err)
			}

			dto, err := c.GetVerificationStatusHandler.Handle(cmd.Context(), queries.GetVerificationStatusQuery{
				OfferID: offerID,
			})
			if err != nil {
				return err
			}
			return printJSON(dto)
		},
	}
}

func newOfferApproveCmd(c *app.Container) *cobra.Command {
	var notes string
	var adminID string

	cmd := &cobra.Command{
		Use:   "approve <offer-id>",
		Short: "Approve a reported move-in issue and cancel the offer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			offerID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid offer id: %w", err)
			}
			admin, err := parseAdminID(adminID)
			if err != nil {
				return err
			}

			o, err := c.ApproveCancellationHandler.Handle(cmd.Context(), commands.ApproveCancellationCommand{
				OfferID: offerID,
				AdminID: admin,
				Notes:   notes,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "offer %s cancelled\n", o.ID())
			return nil
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "administrator notes recorded on the offer")
	cmd.Flags().StringVar(&adminID, "admin-id", "", "acting administrator's user id")
	return cmd
}

func newOfferRejectCmd(c *app.Container) *cobra.Command {
	var notes string
	var adminID string

	cmd := &cobra.Command{
		Use:   "reject <offer-id>",
		Short: "Reject a reported move-in issue and restore the move-in to successful",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			offerID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid offer id: %w", err)
			}
			admin, err := parseAdminID(adminID)
			if err != nil {
				return err
			}

			o, err := c.RejectCancellationHandler.Handle(cmd.Context(), commands.RejectCancellationCommand{
				OfferID: offerID,
				AdminID: admin,
				Notes:   notes,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "offer %s verification restored to %s\n", o.ID(), o.VerificationStatus())
			return nil
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "administrator notes recorded on the offer")
	cmd.Flags().StringVar(&adminID, "admin-id", "", "acting administrator's user id")
	return cmd
}

func parseAdminID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid admin id: %w", err)
	}
	return id, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
