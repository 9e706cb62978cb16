// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/reelrank/internal/recommend"
	"github.com/tomtom215/reelrank/internal/recommend/algorithms"
)

// recommendOptions are the flags of the 'recommend' command.
type recommendOptions struct {
	rates    []string
	userID   string
	topK     int
	numbered bool
	strict   bool
	factors  int
	epochs   int
	seed     int64
	json     bool
}

// newRecommendCmd creates the 'recommend' command.
func newRecommendCmd(root *rootOptions) *cobra.Command {
	opts := &recommendOptions{}
	def := recommend.DefaultConfig()

	cmd := &cobra.Command{
		Use:     "recommend",
		Aliases: []string{"rec"},
		Short:   "Recommend movies from your ratings",
		Long: `Merge the given ratings into the ratings file as a new user (or as the
user named by --user, whose old ratings are replaced), train a model and
print the best unrated titles.

A rating is anything the normalizer understands: "4", "4.5", "4 stars",
"3/5", "four".`,
		Example: `  reelrank recommend --data ratings.csv --rate Heat=5 --rate "Alien=4 stars"
  reelrank recommend --data ratings.csv --user 12 --rate Up=2 --top 5
  reelrank recommend --data ratings.csv --numbered --rate 1=5 --rate 3=4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecommend(cmd, root, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVarP(&opts.rates, "rate", "r", nil, "ITEM=RATING, repeatable")
	flags.StringVarP(&opts.userID, "user", "u", "", "Existing user id (default: a new user)")
	flags.IntVarP(&opts.topK, "top", "k", def.Limits.DefaultK, "Number of titles to print")
	flags.BoolVar(&opts.numbered, "numbered", false, "ITEM is a 1-based number from 'reelrank items'")
	flags.BoolVar(&opts.strict, "strict", false, "Fail when --user is not in the ratings file")
	flags.IntVar(&opts.factors, "factors", def.Trainer.Factors, "Latent factors")
	flags.IntVar(&opts.epochs, "epochs", def.Trainer.Epochs, "Training epochs")
	flags.Int64Var(&opts.seed, "seed", def.Trainer.Seed, "Random seed for factor initialization")
	flags.BoolVar(&opts.json, "json", false, "Print the full response as JSON")

	return cmd
}

func runRecommend(cmd *cobra.Command, root *rootOptions, opts *recommendOptions) error {
	if len(opts.rates) == 0 {
		return errors.New("no ratings provided: pass at least one --rate ITEM=RATING")
	}

	logger := root.logger(cmd)
	store, stats, err := root.loadCorpus(cmd.Context(), logger)
	if err != nil {
		return err
	}

	ratings, err := parseRates(opts.rates, opts.numbered, store.Items())
	if err != nil {
		return err
	}

	cfg := recommend.DefaultConfig()
	cfg.Trainer.Factors = opts.factors
	cfg.Trainer.Epochs = opts.epochs
	cfg.Trainer.Seed = opts.seed
	cfg.Cache.Enabled = false
	if opts.strict {
		cfg.Upsert.UnknownUserPolicy = recommend.UnknownUserStrict
	}

	engine, err := recommend.NewEngine(cfg, algorithms.NewSVD(cfg.Trainer), logger)
	if err != nil {
		return err
	}
	engine.SetBaseline(store, stats)

	resp, err := engine.Recommend(cmd.Context(), recommend.Request{
		UserID:  opts.userID,
		Ratings: ratings,
		TopK:    opts.topK,
	})
	if err != nil {
		return describeError(err)
	}

	if opts.json {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	printRecommendation(cmd.OutOrStdout(), resp)
	return nil
}

// parseRates turns ITEM=RATING flags into ratings. The last '=' separates
// the rating so titles may contain '='.
func parseRates(rates []string, numbered bool, catalog []string) ([]recommend.ItemRating, error) {
	out := make([]recommend.ItemRating, 0, len(rates))
	for _, r := range rates {
		i := strings.LastIndex(r, "=")
		if i <= 0 {
			return nil, fmt.Errorf("invalid --rate %q: want ITEM=RATING", r)
		}
		item, raw := strings.TrimSpace(r[:i]), strings.TrimSpace(r[i+1:])

		if numbered {
			n, err := strconv.Atoi(item)
			if err != nil || n < 1 || n > len(catalog) {
				return nil, fmt.Errorf("invalid movie number %q: enter a number from 1 to %d", item, len(catalog))
			}
			item = catalog[n-1]
		}
		if item == "" {
			return nil, fmt.Errorf("invalid --rate %q: item is empty", r)
		}
		out = append(out, recommend.RateText(item, raw))
	}
	return out, nil
}

// describeError rewords engine errors for a terminal user.
func describeError(err error) error {
	var re *recommend.RatingError
	switch {
	case errors.As(err, &re):
		return fmt.Errorf("invalid rating %q for %q: %s", re.Raw, re.Item, re.Reason)
	case errors.Is(err, recommend.ErrUnknownUser):
		return fmt.Errorf("unknown user: %w", err)
	case errors.Is(err, recommend.ErrNoCandidates):
		return errors.New("every movie has been rated: nothing left to recommend")
	case errors.Is(err, recommend.ErrEmptyCorpus):
		return errors.New("the ratings file has no usable rows")
	}
	return err
}

func printRecommendation(w io.Writer, resp *recommend.Response) {
	if resp.IsNewUser {
		fmt.Fprintf(w, "New user id: %s\n", resp.UserID)
	}
	fmt.Fprintf(w, "We recommend you watch: %s\n", resp.RecommendedItemID)
	if len(resp.Items) > 1 {
		fmt.Fprintln(w)
		for _, it := range resp.Items {
			fmt.Fprintf(w, "%d. %s (%.2f)\n", it.Rank, it.ItemID, it.Score)
		}
	}
}
