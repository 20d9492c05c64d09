package cli

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yungbote/trustlens-backend/internal/domain/review"
	"github.com/yungbote/trustlens-backend/internal/services/feedback"
)

func newHistoryCmd(o *options) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List your most recent analyses",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.requireSession(cmd.Context(), false); err != nil {
				return err
			}
			q := url.Values{}
			if limit > 0 {
				q.Set("limit", strconv.Itoa(limit))
			}
			var body struct {
				Items []review.HistoryItem `json:"items"`
			}
			if err := o.api.Decode(cmd.Context(), http.MethodGet, "/api/history?"+q.Encode(), nil, &body); err != nil {
				return fmt.Errorf("history: %w", err)
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), body.Items)
			}
			if len(body.Items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No analyses yet")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "WHEN\tPRODUCT\tPLATFORM\tVERDICT\tSCORE")
			for _, it := range body.Items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.0f%%\n",
					it.Timestamp.Local().Format("2006-01-02 15:04"),
					it.ProductOrService,
					it.Platform,
					it.PredictedLabel,
					it.TrustScore*100,
				)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of entries")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")
	return cmd
}

func newFeedbackCmd(o *options) *cobra.Command {
	var text, label string
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Report the correct label for a review",
		RunE: func(cmd *cobra.Command, args []string) error {
			fb := feedback.Feedback{Review: text, Label: review.Label(label)}
			if err := fb.Validate(); err != nil {
				return err
			}
			if err := o.requireSession(cmd.Context(), false); err != nil {
				return err
			}
			raw, err := o.api.Call(cmd.Context(), http.MethodPost, "/api/feedback", fb)
			if err != nil {
				return fmt.Errorf("feedback: %w", err)
			}
			if len(raw) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Feedback sent")
				return nil
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(raw))
			return err
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "review text")
	cmd.Flags().StringVar(&label, "label", "", "genuine or fake")
	_ = cmd.MarkFlagRequired("text")
	_ = cmd.MarkFlagRequired("label")
	return cmd
}
