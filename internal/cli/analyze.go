package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yungbote/trustlens-backend/internal/domain/review"
	"github.com/yungbote/trustlens-backend/internal/platform/apiclient"
	"github.com/yungbote/trustlens-backend/internal/platform/envutil"
	"github.com/yungbote/trustlens-backend/internal/platform/httpx"
	"github.com/yungbote/trustlens-backend/internal/platform/openai"
	"github.com/yungbote/trustlens-backend/internal/services/trust"
)

type analyzeFlags struct {
	text     string
	file     string
	product  string
	platform string
	lang     string

	direct         bool
	mlURL          string
	verified       bool
	accountAgeDays int
}

func newAnalyzeCmd(o *options) *cobra.Command {
	f := &analyzeFlags{}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze one review for authenticity",
		Long: `Analyze submits a review and prints its trust score, verdict and explanation.

By default the backend runs the analysis and records it in your history.
With --direct the prediction service is called from this machine instead,
and each step of the analysis is printed as it happens. Direct runs are not
recorded.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := f.submission(cmd.InOrStdin())
			if err != nil {
				return err
			}
			if err := o.requireSession(cmd.Context(), false); err != nil {
				return err
			}
			if f.direct {
				return o.analyzeDirect(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), f, sub)
			}
			var item review.HistoryItem
			if err := o.api.Decode(cmd.Context(), http.MethodPost, "/api/analyze", sub, &item); err != nil {
				return fmt.Errorf("analyze: %w", err)
			}
			printResult(cmd.OutOrStdout(), item.Result())
			return nil
		},
	}
	cmd.Flags().StringVar(&f.text, "text", "", "review text, or - to read stdin")
	cmd.Flags().StringVar(&f.file, "file", "", "read review text from a file")
	cmd.Flags().StringVar(&f.product, "product", "", "product or service reviewed")
	cmd.Flags().StringVar(&f.platform, "platform", string(review.PlatformOther), "one of amazon, yelp, google-maps, tripadvisor, other")
	cmd.Flags().StringVar(&f.lang, "lang", "", "review language (default en)")
	cmd.Flags().BoolVar(&f.direct, "direct", false, "call the prediction service directly")
	cmd.Flags().StringVar(&f.mlURL, "ml-url", envutil.String("ML_SERVICE_URL", "http://localhost:5001"), "prediction service URL for --direct")
	cmd.Flags().BoolVar(&f.verified, "verified", envutil.Bool("DEFAULT_VERIFIED", true), "reviewer metadata for --direct")
	cmd.Flags().IntVar(&f.accountAgeDays, "account-age-days", envutil.Int("DEFAULT_ACCOUNT_AGE_DAYS", 30), "reviewer metadata for --direct")
	_ = cmd.MarkFlagRequired("product")
	return cmd
}

func (f *analyzeFlags) submission(stdin io.Reader) (review.Submission, error) {
	text := f.text
	switch {
	case f.file != "":
		raw, err := os.ReadFile(f.file)
		if err != nil {
			return review.Submission{}, fmt.Errorf("read review file: %w", err)
		}
		text = string(raw)
	case text == "-":
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return review.Submission{}, fmt.Errorf("read stdin: %w", err)
		}
		text = string(raw)
	}
	sub := review.Submission{
		ReviewText:       text,
		ProductOrService: f.product,
		Platform:         review.Platform(f.platform),
		Language:         f.lang,
		Metadata:         review.Metadata{Verified: f.verified, AccountAgeDays: f.accountAgeDays},
	}.Normalize()
	if err := sub.Validate(); err != nil {
		return review.Submission{}, err
	}
	return sub, nil
}

func (o *options) analyzeDirect(ctx context.Context, out, progress io.Writer, f *analyzeFlags, sub review.Submission) error {
	tok, err := o.session.Token(ctx, false)
	if err != nil {
		return err
	}
	token := ""
	if tok != nil {
		token = tok.Raw
	}

	explainer := trust.NewTemplateExplainer()
	if key := envutil.String("OPENAI_API_KEY", ""); key != "" {
		ai, err := openai.NewClient(o.log, openai.Config{APIKey: key, Model: envutil.String("OPENAI_MODEL", "")})
		if err != nil {
			return fmt.Errorf("init openai client: %w", err)
		}
		if explainer, err = trust.NewExplainer(o.log, ai); err != nil {
			return fmt.Errorf("init explainer: %w", err)
		}
	}
	ml := apiclient.New(f.mlURL, httpx.NewClient(o.timeout), nil, o.log)
	analyzer := trust.NewAnalyzer(o.log, trust.NewPredictor(ml), explainer, nil)

	steps := trust.ObserverFunc(func(from, to trust.State, kind trust.ErrorKind) {
		if kind != "" {
			fmt.Fprintf(progress, "  %s -> %s (%s)\n", from, to, kind)
			return
		}
		fmt.Fprintf(progress, "  %s -> %s\n", from, to)
	})
	res, err := analyzer.Analyze(ctx, sub, token, steps)
	if err != nil {
		return err
	}
	printResult(out, res.Result)
	return nil
}

func printResult(w io.Writer, res review.AnalysisResult) {
	fmt.Fprintf(w, "Verdict:     %s\n", strings.ToUpper(string(res.PredictedLabel)))
	fmt.Fprintf(w, "Trust score: %.0f%%\n", res.TrustScore*100)
	fmt.Fprintf(w, "\n%s\n", res.Explanation)
}
